package cli

import (
	"errors"
	"fmt"
	"os"

	"todomcp/internal/cli/formatter"
	"todomcp/internal/config"
	"todomcp/internal/storage"
	"todomcp/pkg/fileops"

	"github.com/spf13/cobra"
)

type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

func newDoctorCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, storage and the keyring",
		Long: "Check that the configured storage can be read and holds a valid data\n" +
			"document. With --file, validate a data document on disk instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var checks []checkResult
			if file != "" {
				checks = []checkResult{checkDocumentFile(file)}
			} else {
				checks = app.runChecks(cmd)
			}

			out := cmd.OutOrStdout()
			if app.jsonOutput() {
				if err := formatter.WriteJSON(out, checks); err != nil {
					return err
				}
			} else {
				for _, c := range checks {
					mark := formatter.StyleGreen.Render("✓")
					if !c.OK {
						mark = formatter.StyleRed.Render("✗")
					}
					fmt.Fprintf(out, "%s %-8s %s\n", mark, c.Name, c.Detail)
				}
			}

			for _, c := range checks {
				if !c.OK {
					return errors.New("doctor found problems")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "validate this data document instead of the configured storage")
	return cmd
}

func (a *App) runChecks(cmd *cobra.Command) []checkResult {
	ctx := cmd.Context()

	cfgPath := a.flags.configPath
	cfgCheck := checkResult{Name: "config", OK: true}
	if cfgPath == "" {
		p, found := config.FindConfigFile()
		cfgPath = p
		if !found {
			cfgPath += " (not present, defaults in use)"
		}
	}
	cfgCheck.Detail = cfgPath

	checks := []checkResult{cfgCheck}

	st, err := a.Store(ctx)
	if err != nil {
		return append(checks, checkResult{Name: "storage", Detail: err.Error()})
	}
	backend := st.Backend()
	storageCheck := checkResult{Name: "storage", OK: true, Detail: backend.Describe()}
	switch _, err := backend.Load(ctx); {
	case errors.Is(err, storage.ErrNotExist):
		storageCheck.Detail += ": nothing stored yet, seed data will be used"
	case err != nil:
		storageCheck.OK = false
		storageCheck.Detail += ": " + err.Error()
	}
	checks = append(checks, storageCheck)

	if a.Credentials != nil {
		s := a.Credentials.Status()
		kc := checkResult{Name: "keyring", OK: true, Detail: "available"}
		if !s.Available {
			// Only fatal when a secret is actually expected from it.
			kc.OK = !a.needsKeyring()
			kc.Detail = "unavailable: " + s.Error
		}
		checks = append(checks, kc)
	}
	return checks
}

// needsKeyring reports whether the configured backend expects a secret from
// the keyring.
func (a *App) needsKeyring() bool {
	s := a.Config.Storage
	switch s.Driver {
	case storage.DriverPostgres:
		return s.DatabaseURL == ""
	case storage.DriverS3:
		return s.S3.AccessKeyID != "" && s.S3.SecretAccessKey == ""
	}
	return false
}

func checkDocumentFile(path string) checkResult {
	path = fileops.ExpandPath(path)
	res := checkResult{Name: "document", Detail: path}
	raw, err := fileops.ReadFileLimited(path, storage.DefaultMaxFileSize)
	if err != nil {
		res.Detail = err.Error()
		if errors.Is(err, os.ErrNotExist) {
			res.Detail = path + ": does not exist"
		}
		return res
	}
	if err := storage.ValidateDocument(raw); err != nil {
		res.Detail = fmt.Sprintf("%s: %v", path, err)
		return res
	}
	res.OK = true
	return res
}
