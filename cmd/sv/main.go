package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"securevault/internal/app"
	"securevault/internal/config"
	"securevault/internal/export"
	"securevault/internal/generator"
	"securevault/internal/vault"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a VaultApp. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "add", "login").
func newApp(operation string) (*app.VaultApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewVaultApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// unlock prompts for the master passphrase and logs in.
func unlock(a *app.VaultApp) error {
	passphrase, err := app.PromptPassphrase("Master passphrase", os.Stderr)
	if err != nil {
		return fmt.Errorf("reading passphrase: %w", err)
	}

	ok, err := a.Gate.Login(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking vault: %w", err)
	}
	if !ok {
		return errors.New("incorrect master passphrase")
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "sv",
	Short: "Encrypted credential vault",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Storage Type: %s\n", cfg.Storage.Type)
		fmt.Printf("Cipher:       %s\n", cfg.Crypto.Type)
		return nil
	},
}

// init command (enrollment)
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the master passphrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("init")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := app.PromptNewPassphrase("Choose a master passphrase", os.Stderr)
		if err != nil {
			return err
		}

		if strength := generator.Strength(passphrase); strength == "weak" || strength == "fair" {
			fmt.Fprintf(os.Stderr, "Warning: passphrase strength is %s\n", strength)
		}

		if err := a.Gate.Enroll(passphrase); err != nil {
			if errors.Is(err, vault.ErrAlreadyEnrolled) {
				return errors.New("vault is already initialized; use 'sv passwd' to change the passphrase")
			}
			return fmt.Errorf("initializing vault: %w", err)
		}

		fmt.Println("Vault initialized.")
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("status")
		if err != nil {
			return err
		}
		defer a.Close()

		enrolled, err := a.Gate.IsEnrolled()
		if err != nil {
			return err
		}

		if !enrolled {
			fmt.Println("Vault is not initialized. Run 'sv init' to set a master passphrase.")
			return nil
		}

		fmt.Println("Vault is initialized.")
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		generate, _ := cmd.Flags().GetBool("generate")

		a, err := newApp("add")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		reader := bufio.NewReader(os.Stdin)
		in := vault.CredentialInput{}

		if in.SiteName, err = app.PromptLine(reader, "Site name", os.Stderr); err != nil {
			return err
		}
		if in.Username, err = app.PromptLine(reader, "Username", os.Stderr); err != nil {
			return err
		}

		if generate {
			in.Password, err = generator.Generate(generator.DefaultOptions())
			if err != nil {
				return fmt.Errorf("generating password: %w", err)
			}
		} else {
			in.Password, err = app.PromptPassphrase("Password", os.Stderr)
			if err != nil {
				return err
			}
		}

		if in.URL, err = app.PromptLine(reader, "URL (optional)", os.Stderr); err != nil {
			return err
		}
		if in.Notes, err = app.PromptLine(reader, "Notes (optional)", os.Stderr); err != nil {
			return err
		}

		category, err := app.PromptLine(reader, fmt.Sprintf("Category (%s)", strings.Join(categoryNames(), "/")), os.Stderr)
		if err != nil {
			return err
		}
		in.Category = vault.ParseCategory(category)

		id, err := a.Store.Add(in)
		if err != nil {
			return fmt.Errorf("adding credential: %w", err)
		}

		fmt.Printf("Added credential %s\n", id)
		if generate {
			fmt.Printf("Generated password: %s\n", in.Password)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		a, err := newApp("list")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		var credentials []vault.Credential
		if category != "" {
			credentials, err = a.Store.FilterByCategory(vault.ParseCategory(category))
		} else {
			credentials, err = a.Store.GetAll()
		}
		if err != nil {
			return err
		}

		printCredentialTable(credentials)
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a credential, including its password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("show")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		c, err := a.Store.GetByID(args[0])
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("no credential with id %s", args[0])
		}

		fmt.Printf("ID:        %s\n", c.ID)
		fmt.Printf("Site:      %s\n", c.SiteName)
		fmt.Printf("Username:  %s\n", c.Username)
		fmt.Printf("Password:  %s\n", c.Password)
		fmt.Printf("URL:       %s\n", c.URL)
		fmt.Printf("Notes:     %s\n", c.Notes)
		fmt.Printf("Category:  %s\n", c.Category)
		fmt.Printf("Created:   %s\n", c.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Modified:  %s\n", c.LastModified.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// update command
var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("update")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		current, err := a.Store.GetByID(args[0])
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("no credential with id %s", args[0])
		}

		reader := bufio.NewReader(os.Stdin)
		fmt.Fprintln(os.Stderr, "Press Enter to keep the current value.")

		in := vault.CredentialInput{
			SiteName: current.SiteName,
			Username: current.Username,
			Password: current.Password,
			URL:      current.URL,
			Notes:    current.Notes,
			Category: current.Category,
		}

		if v, err := app.PromptLine(reader, fmt.Sprintf("Site name [%s]", current.SiteName), os.Stderr); err != nil {
			return err
		} else if v != "" {
			in.SiteName = v
		}
		if v, err := app.PromptLine(reader, fmt.Sprintf("Username [%s]", current.Username), os.Stderr); err != nil {
			return err
		} else if v != "" {
			in.Username = v
		}
		if v, err := app.PromptPassphrase("Password (blank to keep)", os.Stderr); err != nil {
			return err
		} else if v != "" {
			in.Password = v
		}
		if v, err := app.PromptLine(reader, fmt.Sprintf("URL [%s]", current.URL), os.Stderr); err != nil {
			return err
		} else if v != "" {
			in.URL = v
		}
		if v, err := app.PromptLine(reader, fmt.Sprintf("Notes [%s]", current.Notes), os.Stderr); err != nil {
			return err
		} else if v != "" {
			in.Notes = v
		}
		if v, err := app.PromptLine(reader, fmt.Sprintf("Category [%s]", current.Category), os.Stderr); err != nil {
			return err
		} else if v != "" {
			in.Category = vault.ParseCategory(v)
		}

		if err := a.Store.Update(args[0], in); err != nil {
			return fmt.Errorf("updating credential: %w", err)
		}

		fmt.Println("Credential updated.")
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("rm")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		if err := a.Store.Delete(args[0]); err != nil {
			if errors.Is(err, vault.ErrNotFound) {
				return fmt.Errorf("no credential with id %s", args[0])
			}
			return fmt.Errorf("deleting credential: %w", err)
		}

		fmt.Println("Credential deleted.")
		return nil
	},
}

// search command
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search credentials by site, username or notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("search")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		matches, err := a.Store.Search(args[0])
		if err != nil {
			return err
		}

		printCredentialTable(matches)
		return nil
	},
}

// generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random password",
	RunE: func(cmd *cobra.Command, args []string) error {
		length, _ := cmd.Flags().GetInt("length")
		noUpper, _ := cmd.Flags().GetBool("no-uppercase")
		noLower, _ := cmd.Flags().GetBool("no-lowercase")
		noNumbers, _ := cmd.Flags().GetBool("no-numbers")
		noSymbols, _ := cmd.Flags().GetBool("no-symbols")
		memorable, _ := cmd.Flags().GetBool("memorable")
		words, _ := cmd.Flags().GetInt("words")

		var password string
		var err error
		if memorable {
			password, err = generator.Memorable(words, !noNumbers, !noSymbols)
		} else {
			password, err = generator.Generate(generator.Options{
				Length:    length,
				Uppercase: !noUpper,
				Lowercase: !noLower,
				Numbers:   !noNumbers,
				Symbols:   !noSymbols,
			})
		}
		if err != nil {
			return fmt.Errorf("generating password: %w", err)
		}

		fmt.Println(password)
		fmt.Fprintf(os.Stderr, "Strength: %s\n", generator.Strength(password))
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export credentials to an encrypted backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		credentials, err := a.Store.GetAll()
		if err != nil {
			return err
		}

		passphrase, err := app.PromptNewPassphrase("Backup passphrase", os.Stderr)
		if err != nil {
			return err
		}

		f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("creating backup file: %w", err)
		}
		defer f.Close()

		if err := export.Write(f, passphrase, credentials, vault.RealClock{}.Now()); err != nil {
			return fmt.Errorf("writing backup: %w", err)
		}

		fmt.Printf("Exported %d credential(s) to %s\n", len(credentials), args[0])
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import credentials from an encrypted backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("import")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := unlock(a); err != nil {
			return err
		}
		defer a.Gate.Logout()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening backup file: %w", err)
		}
		defer f.Close()

		passphrase, err := app.PromptPassphrase("Backup passphrase", os.Stderr)
		if err != nil {
			return err
		}

		credentials, err := export.Read(f, passphrase)
		if err != nil {
			return fmt.Errorf("reading backup: %w", err)
		}

		// Import replaces the vault contents wholesale.
		if err := a.Store.ClearAll(); err != nil {
			return fmt.Errorf("clearing vault: %w", err)
		}

		count := 0
		for _, c := range credentials {
			_, err := a.Store.Add(vault.CredentialInput{
				SiteName: c.SiteName,
				Username: c.Username,
				Password: c.Password,
				URL:      c.URL,
				Notes:    c.Notes,
				Category: c.Category,
			})
			if err != nil {
				return fmt.Errorf("importing credential %q: %w", c.SiteName, err)
			}
			count++
		}

		fmt.Printf("Imported %d credential(s)\n", count)
		return nil
	},
}

// passwd command
var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the master passphrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("passwd")
		if err != nil {
			return err
		}
		defer a.Close()

		oldPassphrase, err := app.PromptPassphrase("Current master passphrase", os.Stderr)
		if err != nil {
			return err
		}
		newPassphrase, err := app.PromptNewPassphrase("New master passphrase", os.Stderr)
		if err != nil {
			return err
		}

		if err := a.Gate.ChangePassphrase(oldPassphrase, newPassphrase); err != nil {
			if errors.Is(err, vault.ErrAuthentication) {
				return errors.New("incorrect master passphrase")
			}
			return fmt.Errorf("changing passphrase: %w", err)
		}

		fmt.Println("Master passphrase changed.")
		return nil
	},
}

// reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all vault data",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("reset")
		if err != nil {
			return err
		}
		defer a.Close()

		reader := bufio.NewReader(os.Stdin)
		answer, err := app.PromptLine(reader, "This permanently deletes all credentials. Type 'yes' to continue", os.Stderr)
		if err != nil {
			return err
		}
		if answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.Gate.Reset(); err != nil {
			return fmt.Errorf("resetting vault: %w", err)
		}

		fmt.Println("Vault reset. Run 'sv init' to start over.")
		return nil
	},
}

func printCredentialTable(credentials []vault.Credential) {
	if len(credentials) == 0 {
		fmt.Println("No credentials found.")
		return
	}

	for _, c := range credentials {
		fmt.Printf("%-36s  %-20s  %-20s  %s\n", c.ID, c.SiteName, c.Username, c.Category)
	}
}

func categoryNames() []string {
	categories := vault.Categories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolP("generate", "g", false, "Generate a random password instead of prompting")
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("category", "c", "", "Only list credentials in this category")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntP("length", "l", generator.DefaultLength, "Password length")
	generateCmd.Flags().Bool("no-uppercase", false, "Exclude uppercase letters")
	generateCmd.Flags().Bool("no-lowercase", false, "Exclude lowercase letters")
	generateCmd.Flags().Bool("no-numbers", false, "Exclude numbers")
	generateCmd.Flags().Bool("no-symbols", false, "Exclude symbols")
	generateCmd.Flags().Bool("memorable", false, "Generate a word-based memorable password")
	generateCmd.Flags().Int("words", 4, "Number of words for memorable passwords")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(resetCmd)
}
