package clientcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/streamgate/pkg/streamclient"
)

const consultLongDesc string = `Stream a consultation summary from a running gateway.

Sends the patient name, date of visit and notes to the authenticated
consultation route and prints the three section answer: a summary for the
doctor's records, next steps, and a draft email to the patient.

A bearer token is required, either with --token or in STREAMGATE_TOKEN.

Examples:
  streamgate consult --patient "Jane Doe" --notes "Mild fever, prescribed rest."
  streamgate consult --patient "Jane Doe" --date 2026-03-14 --notes-file visit.txt
  cat visit.txt | streamgate consult --patient "Jane Doe" --notes-file -`

const consultShortDesc string = "Stream a consultation summary"

type consultCommander struct {
	opts streamOptions

	patient   string
	date      string
	notes     string
	notesFile string
}

func NewConsultCmd() *cobra.Command {
	cmder := &consultCommander{}

	cmd := &cobra.Command{
		Use:   "consult",
		Short: consultShortDesc,
		Long:  consultLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.opts.preRun(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			visit, err := cmder.visit(cmd.InOrStdin())
			if err != nil {
				return err
			}

			return cmder.opts.run(cmd, func(ctx context.Context, c *streamclient.Client, out io.Writer) (*streamclient.Result, error) {
				return c.Consultation(ctx, visit, out)
			})
		},
	}

	cmder.opts.register(cmd)
	cmd.Flags().StringVar(&cmder.opts.token, "token", "", "Bearer token (default $"+tokenEnv+")")
	cmd.Flags().StringVar(&cmder.patient, "patient", "", "Patient name")
	cmd.Flags().StringVar(&cmder.date, "date", time.Now().Format(time.DateOnly), "Date of visit")
	cmd.Flags().StringVar(&cmder.notes, "notes", "", "Consultation notes")
	cmd.Flags().StringVar(&cmder.notesFile, "notes-file", "", "Read notes from a file (- for stdin)")

	return cmd
}

func (c *consultCommander) visit(stdin io.Reader) (streamclient.Visit, error) {
	notes := c.notes

	if c.notesFile != "" {
		if notes != "" {
			return streamclient.Visit{}, errors.New("--notes and --notes-file are mutually exclusive")
		}

		var (
			data []byte
			err  error
		)
		if c.notesFile == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(c.notesFile)
		}
		if err != nil {
			return streamclient.Visit{}, fmt.Errorf("reading notes: %w", err)
		}
		notes = string(data)
	}

	if strings.TrimSpace(c.patient) == "" {
		return streamclient.Visit{}, errors.New("--patient is required")
	}
	if strings.TrimSpace(notes) == "" {
		return streamclient.Visit{}, errors.New("notes are required (--notes or --notes-file)")
	}

	return streamclient.Visit{
		PatientName: c.patient,
		DateOfVisit: c.date,
		Notes:       notes,
	}, nil
}
