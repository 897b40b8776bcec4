package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const timeLayout = "2006-01-02 15:04"

func ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Query and inspect tickets",
	}
	cmd.AddCommand(ticketsListCmd())
	cmd.AddCommand(ticketsShowCmd())
	cmd.AddCommand(ticketsHistoryCmd())
	cmd.AddCommand(ticketsAssignCmd())
	return cmd
}

func ticketsListCmd() *cobra.Command {
	var query service.TicketQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				page, err := rt.queries.QueryTickets(ctx, query)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(page)
				}
				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Requester", "Assignee", "Updated"})
				for _, ticket := range page.Items {
					t.AppendRow(table.Row{
						ticket.ID,
						truncate(ticket.Title, 40),
						ticket.Status,
						ticket.Priority,
						ticket.Requester.Name,
						ticket.AssignedAgentName,
						ticket.UpdatedAt.Local().Format(timeLayout),
					})
				}
				p := page.Pagination
				t.AppendFooter(table.Row{"", fmt.Sprintf("page %d/%d", p.Page, p.TotalPages), "", "", "", "", fmt.Sprintf("%d total", p.TotalItems)})
				t.Render()
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&query.Search, "search", "", "substring of title or description")
	flags.StringVar(&query.Status, "status", "", "comma separated statuses")
	flags.StringVar(&query.Category, "category", "", "comma separated categories")
	flags.StringVar(&query.Priority, "priority", "", "comma separated priorities")
	flags.StringVar(&query.AssigneeID, "assignee", "", "primary agent id")
	flags.StringVar(&query.AssigneeName, "assignee-name", "", "substring of an assigned agent name")
	flags.StringVar(&query.RequesterID, "requester", "", "requester id")
	flags.StringVar(&query.CreatedFrom, "from", "", "created on or after (YYYY-MM-DD)")
	flags.StringVar(&query.CreatedTo, "to", "", "created on or before (YYYY-MM-DD)")
	flags.BoolVar(&query.OpenOnly, "open", false, "only open tickets")
	flags.BoolVar(&query.ClosedOnly, "closed", false, "only resolved or closed tickets")
	flags.BoolVar(&query.UnassignedOnly, "unassigned", false, "only tickets without a primary agent")
	flags.IntVar(&query.Page, "page", 1, "page number")
	flags.IntVar(&query.Limit, "limit", 0, "page size")
	return cmd
}

func ticketsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				ticket, err := rt.tickets.GetTicket(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(ticket)
				}
				renderTicket(ticket)
				return nil
			})
		},
	}
}

func ticketsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a ticket's audit trail, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				history, err := rt.tickets.GetHistory(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(history)
				}
				renderHistory(history)
				return nil
			})
		},
	}
}

func ticketsAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <id> <agent-id>",
		Short: "Set the primary agent (\"\" unassigns)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				agentID := args[1]
				ticket, err := rt.tickets.ApplyUpdate(ctx, args[0], service.TicketPatch{AssignedAgentID: &agentID}, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(ticket)
				}
				renderTicket(ticket)
				return nil
			})
		},
	}
}

func renderTicket(ticket *domain.Ticket) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendRows([]table.Row{
		{"ID", ticket.ID},
		{"Title", ticket.Title},
		{"Status", ticket.Status},
		{"Priority", ticket.Priority},
		{"Escalation", ticket.EscalationLevel},
		{"Category", strings.TrimSpace(ticket.Category + " " + ticket.SubCategoryID)},
		{"Requester", fmt.Sprintf("%s (%s)", ticket.Requester.Name, ticket.Requester.ID)},
		{"Assignee", ticket.AssignedAgentName},
		{"Co-assignees", strings.Join(ticket.AssignedAgents, ", ")},
		{"Tags", strings.Join(ticket.Tags, ", ")},
		{"Created", ticket.CreatedAt.Local().Format(timeLayout)},
		{"Updated", ticket.UpdatedAt.Local().Format(timeLayout)},
		{"History", len(ticket.UpdateHistory)},
	})
	if ticket.ResolvedAt != nil {
		t.AppendRow(table.Row{"Resolved", ticket.ResolvedAt.Local().Format(timeLayout)})
		t.AppendRow(table.Row{"Resolution", ticket.ResolutionNotes})
	}
	t.Render()
}

func renderHistory(history []domain.AuditEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"When", "Action", "Actor", "Description"})
	for _, entry := range history {
		t.AppendRow(table.Row{
			entry.Timestamp.Local().Format(time.RFC3339),
			entry.Action,
			entry.ActorName,
			entry.Description,
		})
	}
	t.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
