package pl

import (
	"context"
	"strings"
	"time"

	"github.com/colonyops/pl/internal/core/config"
	"github.com/colonyops/pl/internal/core/doctor"
)

// DoctorService runs health checks on the pl setup.
type DoctorService struct {
	config  *config.Config
	loadErr error
	ignores *IgnoreService
	dataDir string
	now     func() time.Time
}

// NewDoctorService creates a new DoctorService. cfg may be nil when loading
// failed, in which case loadErr is reported and defaults are checked.
func NewDoctorService(cfg *config.Config, loadErr error, ignores *IgnoreService, dataDir string) *DoctorService {
	return &DoctorService{
		config:  cfg,
		loadErr: loadErr,
		ignores: ignores,
		dataDir: dataDir,
		now:     time.Now,
	}
}

// RunChecks executes all doctor checks and returns the tallied report.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) doctor.Report {
	cfg := d.config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	composer := "composer"
	if fields := strings.Fields(cfg.Todo.ComposerCommand); len(fields) > 0 {
		composer = fields[0]
	}

	dirs := []doctor.Dir{{Label: "data_dir", Path: d.dataDir}}
	if cfg.SitesDir != "" {
		dirs = append(dirs, doctor.Dir{Label: "sites_dir", Path: cfg.SitesDir})
	}
	if cfg.BackupsDir != "" {
		dirs = append(dirs, doctor.Dir{Label: "backups_dir", Path: cfg.BackupsDir})
	}

	checks := []doctor.Check{
		doctor.NewConfigCheck(configPath, d.loadErr),
		doctor.NewToolsCheck(doctor.DefaultTools(composer)),
		doctor.NewDirsCheck("Directories", dirs),
	}

	if d.ignores != nil && d.loadErr == nil {
		entries, err := d.ignores.List()
		if err == nil {
			checks = append(checks, doctor.NewIgnoreCheck(entries, d.now().UTC(), d.ignores.Prune, autofix))
		}
	}

	return doctor.Run(ctx, checks)
}
