package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ticketFixture is one ticket in a seed file. Status and resolution fields
// are applied after creation so the seeded history looks like real work.
type ticketFixture struct {
	Title              string           `yaml:"title"`
	Description        string           `yaml:"description"`
	Category           string           `yaml:"category"`
	SubCategoryID      string           `yaml:"subCategoryId"`
	Priority           string           `yaml:"priority"`
	EscalationLevel    string           `yaml:"escalationLevel"`
	RequesterID        string           `yaml:"requesterId"`
	AssignedAgentID    string           `yaml:"assignedAgentId"`
	AssignedAgents     []string         `yaml:"assignedAgents"`
	Location           domain.Location  `yaml:"location"`
	AdditionalContacts []domain.Contact `yaml:"additionalContacts"`
	Tags               []string         `yaml:"tags"`
	Comments           []string         `yaml:"comments"`
	Status             string           `yaml:"status"`
	ResolutionNotes    string           `yaml:"resolutionNotes"`
}

type fixtureFile struct {
	Tickets []ticketFixture `yaml:"tickets"`
}

func parseFixtures(data []byte) ([]ticketFixture, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, f := range file.Tickets {
		if strings.TrimSpace(f.Title) == "" {
			return nil, fmt.Errorf("fixture %d: title is required", i)
		}
		if f.Priority != "" {
			if _, ok := domain.ParseTicketPriority(f.Priority); !ok {
				return nil, fmt.Errorf("fixture %d: unknown priority %q", i, f.Priority)
			}
		}
		if f.EscalationLevel != "" {
			if _, ok := domain.ParseEscalationLevel(f.EscalationLevel); !ok {
				return nil, fmt.Errorf("fixture %d: unknown escalation level %q", i, f.EscalationLevel)
			}
		}
		if f.Status != "" {
			status, ok := domain.ParseTicketStatus(f.Status)
			if !ok {
				return nil, fmt.Errorf("fixture %d: unknown status %q", i, f.Status)
			}
			if status == domain.TicketStatusResolved && strings.TrimSpace(f.ResolutionNotes) == "" {
				return nil, fmt.Errorf("fixture %d: resolved tickets need resolutionNotes", i)
			}
		}
	}
	return file.Tickets, nil
}

func (f ticketFixture) createInput() service.TicketCreateInput {
	priority, _ := domain.ParseTicketPriority(f.Priority)
	level, _ := domain.ParseEscalationLevel(f.EscalationLevel)
	return service.TicketCreateInput{
		Title:              f.Title,
		Description:        f.Description,
		Category:           f.Category,
		SubCategoryID:      f.SubCategoryID,
		Priority:           priority,
		RequesterID:        f.RequesterID,
		AssignedAgentID:    f.AssignedAgentID,
		AssignedAgents:     f.AssignedAgents,
		EscalationLevel:    level,
		Location:           f.Location,
		AdditionalContacts: f.AdditionalContacts,
		Tags:               f.Tags,
	}
}

// seedTicket creates the ticket and replays comments and the target status
// through the service so every step lands in the audit trail.
func seedTicket(ctx context.Context, tickets *service.TicketService, f ticketFixture, actorID string) (*domain.Ticket, error) {
	ticket, err := tickets.CreateTicket(ctx, f.createInput(), actorID)
	if err != nil {
		return nil, err
	}
	for _, body := range f.Comments {
		if ticket, err = tickets.AddComment(ctx, ticket.ID, service.CommentInput{Body: body}, actorID); err != nil {
			return nil, err
		}
	}

	status, ok := domain.ParseTicketStatus(f.Status)
	if !ok || status == ticket.Status {
		return ticket, nil
	}
	switch status {
	case domain.TicketStatusResolved:
		return tickets.ResolveTicket(ctx, ticket.ID, service.ResolveInput{Notes: f.ResolutionNotes}, actorID)
	case domain.TicketStatusClosed:
		if f.ResolutionNotes != "" {
			if ticket, err = tickets.ResolveTicket(ctx, ticket.ID, service.ResolveInput{Notes: f.ResolutionNotes}, actorID); err != nil {
				return nil, err
			}
		}
		return tickets.CloseTicket(ctx, ticket.ID, actorID)
	default:
		return tickets.ApplyUpdate(ctx, ticket.ID, service.TicketPatch{Status: &status}, actorID)
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Create tickets from a YAML fixture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fixtures, err := parseFixtures(data)
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				actorID := viper.GetString("actor-id")
				created := make([]*domain.Ticket, 0, len(fixtures))
				for i, f := range fixtures {
					ticket, err := seedTicket(ctx, rt.tickets, f, actorID)
					if err != nil {
						return fmt.Errorf("fixture %d (%s): %w", i, f.Title, err)
					}
					created = append(created, ticket)
				}
				if viper.GetBool("json") {
					return printJSON(created)
				}
				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"ID", "Title", "Status", "History"})
				for _, ticket := range created {
					t.AppendRow(table.Row{ticket.ID, ticket.Title, ticket.Status, len(ticket.UpdateHistory)})
				}
				t.Render()
				return nil
			})
		},
	}
}
