package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"homescout/internal/api"
	"homescout/internal/chat"
	"homescout/internal/config"
	"homescout/internal/favorites"
	"homescout/internal/models"
	"homescout/internal/push"
	"homescout/internal/server"
	"homescout/internal/session"
	"homescout/internal/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app bundles the client-side managers behind the CLI commands.
type app struct {
	cfg      *config.Config
	store    store.Store
	client   *api.Client
	sessions *session.Manager
	favs     *favorites.Synchronizer
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".homescout")
}

// newApp wires the client stack and restores any persisted session.
func newApp(configPath string) (*app, error) {
	cfg := &config.Config{}
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(defaultDir(), "state.db")
	}

	server.SetupLogger(cfg.Log.Level)

	st, err := store.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	sessions := session.NewManager(client, st)
	sessions.SetPushRegistrar(push.NewRegistrar(client, st))
	favs := favorites.NewSynchronizer(client)
	sessions.OnChange(favs.Clear)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	defer cancel()
	if _, err := sessions.RestoreSession(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to restore session")
	}

	return &app{cfg: cfg, store: st, client: client, sessions: sessions, favs: favs}, nil
}

func (a *app) requireSession() error {
	if _, ok := a.sessions.CurrentUser(); !ok {
		return fmt.Errorf("not logged in; run 'homescout login' or 'homescout guest'")
	}
	return nil
}

func printProperty(p *models.Property) {
	fmt.Printf("%s  %s\n", p.ID, p.Title)
	fmt.Printf("  %s, %.0f (%s)\n", p.Location.Address, p.Price, p.Category)
	if p.Bedrooms > 0 {
		fmt.Printf("  %d bed / %d bath, %s\n", p.Bedrooms, p.Bathrooms, p.Furnished)
	}
	if p.PG != nil {
		fmt.Printf("  PG: %s room, shared bathroom: %v\n", p.PG.RoomType, p.PG.SharedBathroom)
	}
}

func main() {
	var (
		a          *app
		configPath string
	)

	root := &cobra.Command{
		Use:          "homescout",
		Short:        "Property listing client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(configPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.store.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", filepath.Join(defaultDir(), "config.yaml"), "path to configuration file")

	root.AddCommand(
		loginCmd(&a), registerCmd(&a), guestCmd(&a), logoutCmd(&a), whoamiCmd(&a),
		profileCmd(&a), searchCmd(&a), showCmd(&a), favCmd(&a), chatCmd(&a),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loginCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email-or-phone> <password>",
		Short: "Log in with a password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).sessions.Login(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			user, _ := (*a).sessions.CurrentUser()
			fmt.Printf("Logged in as %s\n", user.Name)
			return nil
		},
	}
}

func registerCmd(a **app) *cobra.Command {
	var name, email, phone, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).sessions.Register(cmd.Context(), name, email, phone, password); err != nil {
				return err
			}
			fmt.Println("Account created")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func guestCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Browse without an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).sessions.GuestEntry(); err != nil {
				return err
			}
			fmt.Println("Browsing as guest; favorites and messaging are unavailable")
			return nil
		},
	}
}

func logoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).sessions.Logout()
		},
	}
}

func whoamiCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := (*a).sessions.CurrentUser()
			if !ok {
				fmt.Println("Not logged in")
				return nil
			}
			kind := "user"
			if user.IsGuest {
				kind = "guest"
			}
			fmt.Printf("%s (%s) <%s> [%s]\n", user.Name, user.ID, user.Email, kind)
			return nil
		},
	}
}

func profileCmd(a **app) *cobra.Command {
	var name, email, phone string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireSession(); err != nil {
				return err
			}
			patch := map[string]interface{}{}
			if name != "" {
				patch["name"] = name
			}
			if email != "" {
				patch["email"] = email
			}
			if phone != "" {
				patch["phone"] = phone
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to update")
			}
			if err := (*a).sessions.UpdateProfile(cmd.Context(), patch); err != nil {
				return err
			}
			fmt.Println("Profile updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	return cmd
}

func searchCmd(a **app) *cobra.Command {
	var filter api.SearchFilter
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the listing catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				filter.Query = args[0]
			}
			props, err := (*a).client.SearchProperties(cmd.Context(), filter)
			if err != nil {
				return err
			}
			for i := range props {
				printProperty(&props[i])
			}
			fmt.Printf("%d properties\n", len(props))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Category, "category", "", "sale, rent or pg")
	cmd.Flags().StringVar(&filter.City, "city", "", "city")
	cmd.Flags().Float64Var(&filter.MinPrice, "min-price", 0, "minimum price")
	cmd.Flags().Float64Var(&filter.MaxPrice, "max-price", 0, "maximum price")
	cmd.Flags().IntVar(&filter.Bedrooms, "bedrooms", 0, "minimum bedrooms")
	return cmd
}

func showCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <property-id>",
		Short: "Show a single listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prop, err := (*a).client.Property(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProperty(prop)
			if prop.Description != "" {
				fmt.Println(" ", prop.Description)
			}
			if (*a).favs.IsFavorite(prop.ID) {
				fmt.Println("  (favorited)")
			}
			return nil
		},
	}
}

func favCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorites",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorited properties",
		RunE: func(c *cobra.Command, args []string) error {
			if err := (*a).requireSession(); err != nil {
				return err
			}
			if err := (*a).favs.LoadAll(c.Context()); err != nil {
				return err
			}
			props := (*a).favs.Properties()
			for i := range props {
				printProperty(&props[i])
			}
			fmt.Printf("%d favorites\n", len(props))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <property-id>",
		Short: "Favorite or unfavorite a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := (*a).requireSession(); err != nil {
				return err
			}
			if (*a).sessions.IsGuest() {
				return fmt.Errorf("guests cannot favorite properties; log in first")
			}
			if err := (*a).favs.LoadAll(c.Context()); err != nil {
				return err
			}
			favorited, err := (*a).favs.Toggle(c.Context(), args[0], nil)
			if err != nil {
				log.Warn().Err(err).Msg("Toggle did not take")
			}
			if favorited {
				fmt.Println("Favorited")
			} else {
				fmt.Println("Not favorited")
			}
			return nil
		},
	})

	return cmd
}

func chatCmd(a **app) *cobra.Command {
	var propertyID string
	cmd := &cobra.Command{
		Use:   "chat <user-id>",
		Short: "Chat with a property owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := (*a).requireSession(); err != nil {
				return err
			}
			receiverID := args[0]

			client, err := chat.Dial(c.Context(), (*a).cfg.API.BaseURL, (*a).sessions.Token())
			if err != nil {
				return err
			}
			defer client.Close()

			go func() {
				for msg := range client.Messages() {
					fmt.Printf("[%s] %s\n", msg.SenderID, msg.Body)
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := scanner.Text()
				if line == "" {
					continue
				}
				if err := client.Send(receiverID, propertyID, line); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&propertyID, "property", "", "property the conversation is about")
	return cmd
}
