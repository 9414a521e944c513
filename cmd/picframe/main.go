package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"picframe/internal/app"
	"picframe/internal/config"
	"picframe/internal/frame"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a PicframeApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Rotate", "Serve").
// Long-running and unattended commands also log to stderr.
func newApp(operation string, logToConsole bool) (*app.PicframeApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var opts app.Options
	if logToConsole {
		opts.Console = os.Stderr
	}
	a, err := app.NewApp(cfg, operation, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "picframe",
	Short:        "Shared picture frame: uploads, rotation and display",
	SilenceUsage: true,
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

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults["config_path"])
		fmt.Fprintf(out, "Base Dir:   %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Upload Dir: %s\n", cfg.UploadDir)
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

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults["config_path"])
		fmt.Fprintf(out, "Base Dir:   %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:    %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Upload Dir: %s\n", cfg.UploadDir)
		fmt.Fprintf(out, "State:      %s (locking=%t)\n", cfg.State.Type, cfg.State.Locking)
		fmt.Fprintf(out, "Display:    %s %v\n", cfg.Display.Type, cfg.Display.Command)
		fmt.Fprintf(out, "History:    %s\n", cfg.History.Type)
		fmt.Fprintf(out, "Server:     %s\n", cfg.Server.Bind)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP front end",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve", true)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.Serve(ctx)
	},
}

// rotate command
var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Display the next image (for timers); exits non-zero unless an image was committed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Rotate", true)
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.Rotate(cmd.Context())
		if errors.Is(err, frame.ErrNoImages) {
			return errors.New("no images available")
		}
		if err != nil {
			return fmt.Errorf("rotation failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Displayed %s\n", name)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List images, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		a, err := newApp("ListImages", false)
		if err != nil {
			return err
		}
		defer a.Close()

		images, err := a.ListImages(user)
		if err != nil {
			return err
		}
		if len(images) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No images.")
			return nil
		}
		current, err := a.CurrentImage()
		if err != nil {
			return err
		}

		writeTable(cmd.OutOrStdout(),
			[]string{"", "Filename", "Size", "Uploaded", "Uploader"},
			imageRows(images, current),
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		)
		return nil
	},
}

// current command
var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the image recorded as displayed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CurrentImage", false)
		if err != nil {
			return err
		}
		defer a.Close()

		current, err := a.CurrentImage()
		if err != nil {
			return err
		}
		if current == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing displayed.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), current)
		return nil
	},
}

// users command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List uploaders and their display names",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListUsers", false)
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.ListUsers()
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No uploaders.")
			return nil
		}

		writeTable(cmd.OutOrStdout(),
			[]string{"Address", "Name", "Images"},
			userRows(users),
			[]columnAlignment{alignLeft, alignLeft, alignRight},
		)
		return nil
	},
}

// upload command
var uploadCmd = &cobra.Command{
	Use:   "upload PATH",
	Short: "Add a local image file to the frame",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		as, _ := cmd.Flags().GetString("as")

		a, err := newApp("Upload", false)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening image: %w", err)
		}
		defer f.Close()

		name, err := a.Upload(filepath.Base(args[0]), as, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", name)
		return nil
	},
}

// display command
var displayCmd = &cobra.Command{
	Use:   "display FILENAME",
	Short: "Show a specific image on the panel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Display", true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Display(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Displayed %s\n", args[0])
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete FILENAME",
	Short: "Delete an image and its attribution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Delete", false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

// name command
var nameCmd = &cobra.Command{
	Use:   "name ADDRESS NAME",
	Short: "Set the display name for a client address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetDisplayName", false)
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.SetDisplayName(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %q\n", args[0], name)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent display attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory", false)
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.GetHistory(limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No display attempts recorded.")
			return nil
		}

		writeTable(cmd.OutOrStdout(),
			[]string{"Started", "", "Trigger", "Filename", "Status", "Duration", "Error"},
			historyRows(events, time.Now()),
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("user", "u", "", "Only show images uploaded by this address")
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().String("as", "local", "Address to attribute the upload to")
	rootCmd.AddCommand(displayCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of attempts to show")
}
