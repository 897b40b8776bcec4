package main

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spec-kit/helpdesk-service/internal/catalog"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the user and category catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List catalog users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			users := cat.Users()
			if viper.GetBool("json") {
				return printJSON(users)
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Name", "Email", "Role", "Department"})
			for _, u := range users {
				t.AppendRow(table.Row{u.ID, u.Name(), u.Email, u.Role, u.Department})
			}
			t.Render()
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "categories",
		Short: "List categories and their sub-categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			categories := cat.Categories()
			if viper.GetBool("json") {
				return printJSON(categories)
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Category", "Sub-categories"})
			for _, c := range categories {
				subs := make([]string, 0, len(c.SubCategories))
				for _, sub := range c.SubCategories {
					subs = append(subs, sub.ID+" "+sub.Name)
				}
				t.AppendRow(table.Row{c.Name, strings.Join(subs, "\n")})
			}
			t.Render()
			return nil
		},
	})
	return cmd
}

func openCatalog() (*catalog.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return catalog.LoadFile(cfg.Catalog.Path)
}
