package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/amit-3245/campus-complaint-portal/internal/client"
	"github.com/amit-3245/campus-complaint-portal/internal/listing"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req client.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.Role, "role", models.RoleStudent, "student or teacher")
	fs.StringVar(&req.StudentID, "student-id", "", "required for students")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.desk.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s <%s> as %s\n", u.Name, u.Email, u.Role)
	fmt.Fprintln(a.out, a.desk.Token())
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.desk.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.desk.Token())
	return nil
}

func (a *app) profile(ctx context.Context) error {
	u, err := a.desk.LoadProfile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\nrole: %s\n", u.Name, u.Email, u.Role)
	if u.StudentID != "" {
		fmt.Fprintf(a.out, "student id: %s\n", u.StudentID)
	}
	return nil
}

func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	var in client.NewComplaint
	fs.StringVar(&in.ComplaintType, "type", models.TypeStudent, "student or teacher")
	fs.StringVar(&in.StudentID, "student-id", "", "required for student complaints")
	fs.StringVar(&in.Title, "title", "", "short title")
	fs.StringVar(&in.Category, "category", "", "one of the fixed categories")
	fs.StringVar(&in.Problem, "problem", "", "description")
	image := fs.String("image", "", "optional image file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return err
		}
		defer f.Close()
		in.Image = f
		in.ImageName = filepath.Base(*image)
	}

	c, err := a.desk.Submit(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created %s (%s)\n", c.ID, c.Status)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	mine := fs.Bool("mine", false, "only my complaints (default for non-admins)")
	var cr listing.Criteria
	fs.StringVar(&cr.Status, "status", listing.All, "status filter")
	fs.StringVar(&cr.Category, "category", listing.All, "category filter")
	fs.StringVar(&cr.Type, "type", listing.All, "complaint type filter")
	fs.StringVar(&cr.Search, "search", "", "text search")
	sortFlag := fs.String("sort", "newest", "newest, oldest, title or status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, ok := listing.ParseSortKey(*sortFlag)
	if !ok {
		return fmt.Errorf("unknown sort key %q", *sortFlag)
	}

	if _, err := a.desk.LoadProfile(ctx); err != nil {
		return err
	}

	var shown []models.Complaint
	var total int
	if *mine || !a.desk.IsAdmin() {
		if err := a.desk.RefreshMine(ctx); err != nil {
			return err
		}
		shown = a.desk.Mine(cr, key)
		total = len(a.desk.Mine(listing.Criteria{}, ""))
	} else {
		if err := a.desk.RefreshAll(ctx); err != nil {
			return err
		}
		shown = a.desk.All(cr, key)
		total = len(a.desk.All(listing.Criteria{}, ""))
	}

	printComplaints(a.out, shown)
	fmt.Fprintf(a.out, "\nShowing %d of %d complaints\n", len(shown), total)
	return nil
}

func printComplaints(out io.Writer, list []models.Complaint) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tCATEGORY\tTYPE\tTITLE\tOWNER")
	for _, c := range list {
		owner := ""
		if c.User != nil {
			owner = c.User.Email
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.CreatedAt.Format("2006-01-02 15:04"), c.Status, c.Category, c.ComplaintType, c.Title, owner)
	}
	tw.Flush()
}

func (a *app) status(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: deskctl status <id> <status>")
	}
	c, err := a.desk.SetStatus(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s\n", c.ID, c.Status)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: deskctl delete <id>")
	}
	msg, err := a.desk.Remove(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *app) summary(ctx context.Context) error {
	token := a.desk.Token()
	if token == "" {
		return client.ErrNoSession
	}
	sum, err := a.api.Summary(ctx, token)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Total: %d\n", sum.Total)
	for _, s := range models.Statuses {
		fmt.Fprintf(a.out, "%-12s %d\n", s+":", sum.ByStatus[s])
	}
	return nil
}

func (a *app) fetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	output := fs.String("o", "", "output file (default: the upload name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: deskctl fetch [-o FILE] <filename>")
	}
	name := fs.Arg(0)

	body, _, err := a.api.FetchUpload(ctx, name)
	if err != nil {
		return err
	}
	defer body.Close()

	dest := *output
	if dest == "" {
		dest = filepath.Base(name)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %d bytes to %s\n", n, dest)
	return nil
}
