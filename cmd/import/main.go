// ABOUTME: Import utility that loads exported contact and activity JSON into a leadgen database
// ABOUTME: Normalizes loose records, reuses contacts by email and remaps activity contact ids

package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/harperreed/leadgen/db"
	"github.com/harperreed/leadgen/models"
	"github.com/harperreed/leadgen/normalize"
)

type options struct {
	dbPath         string
	project        string
	contactsPath   string
	activitiesPath string
	timezone       string
	dryRun         bool
	backup         bool
}

type summary struct {
	Contacts   int
	Reused     int
	Activities int
	Rejected   int
}

func (s summary) String() string {
	return fmt.Sprintf("%d contacts (%d reused), %d activities imported, %d rejected",
		s.Contacts, s.Reused, s.Activities, s.Rejected)
}

func main() {
	var opts options
	flag.StringVar(&opts.dbPath, "db", "", "Path to database file (required)")
	flag.StringVar(&opts.project, "project", "", "Project id or name; created when missing (required)")
	flag.StringVar(&opts.contactsPath, "contacts", "", "Contacts JSON export")
	flag.StringVar(&opts.activitiesPath, "activities", "", "Activities JSON export")
	flag.StringVar(&opts.timezone, "timezone", "Local", "Time zone of day-only dates in the export")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Validate the export without writing")
	flag.BoolVar(&opts.backup, "backup", true, "Create backup before importing")
	flag.Parse()

	if opts.dbPath == "" || opts.project == "" {
		log.Fatal("Error: -db and -project flags are required")
	}
	if opts.contactsPath == "" && opts.activitiesPath == "" {
		log.Fatal("Error: nothing to import, pass -contacts and/or -activities")
	}

	s, err := run(opts)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import completed: %s", s)
}

func run(opts options) (summary, error) {
	loc, err := loadLocation(opts.timezone)
	if err != nil {
		return summary{}, err
	}

	if opts.backup && !opts.dryRun {
		if err := backupDatabase(opts.dbPath); err != nil {
			return summary{}, err
		}
	}

	database, err := db.OpenDatabase(opts.dbPath)
	if err != nil {
		return summary{}, err
	}
	defer func() { _ = database.Close() }()

	project, err := ensureProject(database, opts.project, opts.dryRun)
	if err != nil {
		return summary{}, err
	}

	n := normalize.New(loc)
	var s summary
	ids := map[string]string{}

	if opts.contactsPath != "" {
		records, err := readRecords(opts.contactsPath)
		if err != nil {
			return summary{}, err
		}
		contacts, errs := n.Contacts(records)
		s.Rejected += reportRejected(errs)
		for _, c := range contacts {
			if err := importContact(database, project, c, ids, opts.dryRun, &s); err != nil {
				log.Printf("Rejected contact %s: %v", c.Key(), err)
				s.Rejected++
			}
		}
	}

	if opts.activitiesPath != "" {
		records, err := readRecords(opts.activitiesPath)
		if err != nil {
			return summary{}, err
		}
		activities, errs := n.Activities(records)
		s.Rejected += reportRejected(errs)
		for _, a := range activities {
			if err := importActivity(database, project, a, ids, opts.dryRun); err != nil {
				log.Printf("Rejected activity %s: %v", a.ID, err)
				s.Rejected++
				continue
			}
			s.Activities++
		}
	}
	return s, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func backupDatabase(dbPath string) error {
	input, err := os.ReadFile(dbPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}
	backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
	log.Printf("Creating backup: %s", backupPath)
	if err := os.WriteFile(backupPath, input, 0o600); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

func ensureProject(database *sql.DB, ref string, dryRun bool) (*models.Project, error) {
	p, err := db.GetProject(database, ref)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	p = &models.Project{Name: ref}
	if dryRun {
		log.Printf("[DRY RUN] Would create project %s", ref)
		return p, nil
	}
	if err := db.CreateProject(database, p); err != nil {
		return nil, err
	}
	log.Printf("Created project %s (ID: %s)", p.Name, p.ID)
	return p, nil
}

func readRecords(path string) ([]normalize.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := normalize.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}

func reportRejected(errs []error) int {
	for _, err := range errs {
		log.Printf("Rejected record: %v", err)
	}
	return len(errs)
}

// importContact stores c, or reuses the contact with the same email, and
// records its new id under the export's key.
func importContact(database *sql.DB, project *models.Project, c models.Contact, ids map[string]string, dryRun bool, s *summary) error {
	oldKey := c.Key()
	if c.Name == "" {
		return fmt.Errorf("contact has no name")
	}

	if c.Email != "" {
		existing, err := db.FindContactByEmail(database, c.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			ids[oldKey] = existing.ID
			s.Reused++
			if dryRun {
				return nil
			}
			_, err := db.AddContactToProject(database, project.ID, existing.ID)
			return err
		}
	}

	if dryRun {
		ids[oldKey] = oldKey
		s.Contacts++
		return nil
	}
	c.ProjectContactID = ""
	if err := db.CreateContact(database, &c); err != nil {
		return err
	}
	ids[oldKey] = c.ID
	s.Contacts++
	_, err := db.AddContactToProject(database, project.ID, c.ID)
	return err
}

// importActivity logs a under project. Contact ids from the export are
// remapped; ids that were not part of the export must already exist.
func importActivity(database *sql.DB, project *models.Project, a models.Activity, ids map[string]string, dryRun bool) error {
	if a.ContactID != "" {
		if id, ok := ids[a.ContactID]; ok {
			a.ContactID = id
		} else {
			existing, err := db.GetContact(database, a.ContactID)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("unknown contact %s", a.ContactID)
			}
		}
	}
	if dryRun {
		return nil
	}
	a.ProjectID = project.ID
	return db.LogActivity(database, &a)
}
