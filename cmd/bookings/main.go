// Command bookings is the operator tool for the swim school database: list
// and export bookings, and send test mails through the configured transport.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/swimschool/internal/config"
	"github.com/dukerupert/swimschool/internal/database"
	"github.com/dukerupert/swimschool/internal/email"
	"github.com/dukerupert/swimschool/internal/export"
	"github.com/dukerupert/swimschool/internal/logging"
	"github.com/dukerupert/swimschool/internal/model"
	"github.com/dukerupert/swimschool/internal/notify"
	"github.com/dukerupert/swimschool/internal/store"
)

const usage = `usage: bookings <command> [flags]

commands:
  list      print bookings, newest first
  export    write all bookings to an XLSX file
  mailtest  send a plain test message
  preview   send a sample confirmation-request mail
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "list":
		err = runList(ctx, cfg, args, os.Stdout)
	case "export":
		err = runExport(ctx, cfg, args)
	case "mailtest":
		err = runMailTest(ctx, cfg, args, logger)
	case "preview":
		err = runPreview(ctx, cfg, args, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func runList(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 100, "maximum number of bookings (0 for all)")
	asCSV := fs.Bool("csv", false, "write CSV instead of a table")
	fs.Parse(args)

	bookings, err := listBookings(ctx, cfg, *limit)
	if err != nil {
		return err
	}
	if *asCSV {
		return export.WriteCSV(out, bookings)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCONFIRMED\tSLOT\tCHILD\tPARENT\tEMAIL")
	for _, b := range bookings {
		confirmed := "-"
		if b.ConfirmedAt != nil {
			confirmed = b.ConfirmedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04"), confirmed,
			b.DesiredTimeSlot, b.ChildName, b.ParentName, b.ParentEmail)
	}
	return tw.Flush()
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "bookings.xlsx", "output file")
	fs.Parse(args)

	bookings, err := listBookings(ctx, cfg, 0)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := export.WriteXLSX(f, bookings); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *out, err)
	}
	slog.Info("exported bookings", "count", len(bookings), "file", *out)
	return nil
}

func runMailTest(ctx context.Context, cfg *config.Config, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("mailtest", flag.ExitOnError)
	to := fs.String("to", cfg.Mail.Owner, "recipient")
	fs.Parse(args)

	transport := newTransport(cfg.Mail, logger)
	err := transport.Send(ctx, email.Message{
		From:     cfg.Mail.From,
		To:       *to,
		Subject:  cfg.Mail.SiteName + ": test message",
		TextBody: "This is a test message sent at " + time.Now().Format(time.RFC1123) + ".",
		Tag:      "mailtest",
	})
	if err != nil {
		return err
	}
	slog.Info("test mail sent", "to", *to, "transport", cfg.Mail.Transport)
	return nil
}

func runPreview(ctx context.Context, cfg *config.Config, args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	to := fs.String("to", cfg.Mail.Owner, "recipient")
	fs.Parse(args)
	if strings.TrimSpace(*to) == "" {
		return errors.New("preview: -to is required")
	}

	dispatcher, err := notify.New(newTransport(cfg.Mail, logger), notify.Config{
		From:       cfg.Mail.From,
		OwnerEmail: cfg.Mail.Owner,
		SiteName:   cfg.Mail.SiteName,
	}, logger)
	if err != nil {
		return err
	}

	token, err := store.GenerateToken()
	if err != nil {
		return err
	}
	b := sampleBooking(cfg, *to)
	url := strings.TrimRight(cfg.BaseURL, "/") + "/booking/confirm/" + token
	if err := dispatcher.SendBookingConfirmationRequest(ctx, b, url); err != nil {
		return err
	}
	slog.Info("preview sent", "to", *to)
	return nil
}

func listBookings(ctx context.Context, cfg *config.Config, limit int) ([]model.Booking, error) {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return store.NewBookingStore(db).List(ctx, limit)
}

func newTransport(cfg config.MailConfig, logger *slog.Logger) email.Transport {
	if cfg.Transport == "postmark" {
		return email.NewClient(cfg.PostmarkToken, email.WithMessageStream(cfg.MessageStream))
	}
	return email.NewLogTransport(logger)
}

func sampleBooking(cfg *config.Config, parentEmail string) *model.Booking {
	slot := ""
	if len(cfg.Forms.Booking.TimeSlots) > 0 {
		slot = cfg.Forms.Booking.TimeSlots[0]
	}
	return &model.Booking{
		CreatedAt:             time.Now(),
		CoursePeriod:          cfg.Forms.Booking.CoursePeriod,
		DesiredTimeSlot:       slot,
		ChildName:             "Max Mustermann",
		ChildBirthdate:        time.Date(2018, 5, 14, 0, 0, 0, 0, time.UTC),
		ChildAddress:          "Poolstraße 1, 12345 Beckenstadt",
		MaySwimWithoutAid:     true,
		ParentName:            "Erika Mustermann",
		ParentEmail:           parentEmail,
		PaymentMethod:         model.PaymentBankTransfer,
		ParticipationConsent:  true,
		LiabilityAcknowledged: true,
		DataConsent:           true,
		BookingConfirmation:   true,
	}
}
