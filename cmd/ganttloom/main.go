package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshharrison/ganttloom/internal/calendar"
	"github.com/joshharrison/ganttloom/internal/config"
	"github.com/joshharrison/ganttloom/internal/conflict"
	"github.com/joshharrison/ganttloom/internal/cpm"
	"github.com/joshharrison/ganttloom/internal/enrich"
	"github.com/joshharrison/ganttloom/internal/estimate"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/model"
	"github.com/joshharrison/ganttloom/internal/report"
	"github.com/joshharrison/ganttloom/internal/schedule"
	"github.com/joshharrison/ganttloom/internal/store"
	"github.com/joshharrison/ganttloom/internal/ui"
)

var (
	flagDB      string
	flagProject string
	flagJSON    bool
	flagStart   string
	flagHorizon int
	flagEnrich  bool
	flagModel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ganttloom",
		Short: "Compute project schedules, critical paths and conflicts from a task snapshot",
		Long: `Ganttloom reads a project's task snapshot, resolves task dates under
dependency constraints on a workday calendar, builds a Gantt chart, runs
Critical Path Method analysis, detects scheduling conflicts and produces
PERT duration estimates. An optional Claude call adds narrative text and
never alters the numeric schedule.`,
	}

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", ".ganttloom.db", "Snapshot database path")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "Project ID (defaults to the only project in the database)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagStart, "start", "", "Fallback project start date (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(criticalPathCmd())
	rootCmd.AddCommand(conflictsCmd())
	rootCmd.AddCommand(estimateCmd())
	rootCmd.AddCommand(milestonesCmd())
	rootCmd.AddCommand(deadlinesCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// snapshot bundles everything a command needs to compute.
type snapshot struct {
	cfg     *config.Config
	cal     calendar.Calendar
	project *model.Project
	tasks   []model.Task
	start   time.Time
}

// loadSnapshot opens the store and fetches the project and its tasks.
func loadSnapshot(ctx context.Context) (*snapshot, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}

	s, err := store.New(flagDB)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	defer s.Close()

	projectID := flagProject
	if projectID == "" {
		projects, err := s.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		if len(projects) == 0 {
			return nil, fmt.Errorf("no projects in %s (use 'ganttloom import')", flagDB)
		}
		if len(projects) > 1 {
			names := make([]string, len(projects))
			for i, p := range projects {
				names[i] = p.ID
			}
			return nil, fmt.Errorf("multiple projects in database, pass --project (one of: %s)", strings.Join(names, ", "))
		}
		projectID = projects[0].ID
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.TasksForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if flagStart != "" {
		start, err = time.Parse("2006-01-02", flagStart)
		if err != nil {
			return nil, fmt.Errorf("parse --start: %w", err)
		}
	}

	return &snapshot{
		cfg:     cfg,
		cal:     calendar.New(cfg.WorkdaysPerWeek, cfg.HoursPerDay),
		project: project,
		tasks:   tasks,
		start:   start,
	}, nil
}

// buildSchedule runs the Gantt builder and CPM engine over a snapshot.
func buildSchedule(snap *snapshot) (*schedule.Chart, *cpm.Result) {
	chart := schedule.Build(snap.project, snap.tasks, snap.start, snap.cal)
	g := graph.Build(snap.tasks)
	return chart, cpm.Analyze(chart, g, snap.cal)
}

// narrate runs the optional enrichment call. Failures degrade to templated
// text; this never returns an error.
func narrate(ctx context.Context, snap *snapshot, chart *schedule.Chart, result *cpm.Result, conflictCount int, expectedDays float64) string {
	if !flagEnrich && !snap.cfg.Enrich.Enabled {
		return ""
	}

	path := make([]string, len(result.CriticalPath))
	for i, n := range result.CriticalPath {
		path[i] = n.TaskID
	}
	in := enrich.Input{
		ProjectName:   snap.project.Name,
		TimelineStart: chart.Timeline.Start.Format("2006-01-02"),
		TimelineEnd:   chart.Timeline.End.Format("2006-01-02"),
		Workdays:      chart.Timeline.Workdays,
		TaskCount:     len(chart.Tasks),
		CriticalPath:  path,
		ConflictCount: conflictCount,
		ExpectedDays:  expectedDays,
	}

	modelName := flagModel
	if modelName == "" {
		modelName = snap.cfg.Enrich.Model
	}
	client, err := enrich.NewClient("", modelName)
	if err != nil {
		// No API key available; fall back silently.
		client = nil
	}
	timeout := time.Duration(snap.cfg.Enrich.TimeoutSeconds) * time.Second
	return enrich.Narrate(ctx, client, timeout, in)
}

func output(r *report.Reporter, print func(*report.Reporter)) error {
	if flagJSON {
		data, err := r.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	print(r)
	return nil
}

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Build the Gantt chart with critical path markers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := loadSnapshot(ctx)
			if err != nil {
				return err
			}
			chart, result := buildSchedule(snap)
			conflicts := conflict.Detect(snap.project, snap.tasks, snap.cal)
			est := estimate.Compute(snap.tasks, snap.cal)

			r := &report.Reporter{Chart: chart, CPM: result}
			r.Narrative = narrate(ctx, snap, chart, result, conflicts.Summary.Total, est.WorkingDays.Expected)
			return output(r, func(r *report.Reporter) { r.PrintSchedule(os.Stdout) })
		},
	}
	cmd.Flags().BoolVar(&flagEnrich, "enrich", false, "Add a Claude-generated narrative (degrades gracefully)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Override the enrichment model")
	return cmd
}

func criticalPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "critical-path",
		Short: "Run CPM analysis and print per-task float",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			chart, result := buildSchedule(snap)

			if flagJSON {
				r := &report.Reporter{CPM: result}
				return output(r, nil)
			}

			fmt.Printf("%s\n", ui.BoldCyan("⚡ Critical path analysis"))
			for _, st := range chart.Tasks {
				n := result.Nodes[st.TaskID]
				mark := " "
				if n.OnCritical {
					mark = ui.BoldYellow("⚡")
				}
				fmt.Printf("  %s %-10s ES %s  EF %s  LS %s  LF %s  float %s/%s\n",
					mark, ui.BoldMagenta(st.TaskID),
					n.EarlyStart.Format("2006-01-02"), n.EarlyFinish.Format("2006-01-02"),
					n.LateStart.Format("2006-01-02"), n.LateFinish.Format("2006-01-02"),
					ui.Bold(fmt.Sprint(n.TotalFloat)), ui.Dim(fmt.Sprint(n.FreeFloat)))
			}
			m := result.Metrics
			fmt.Printf("\n  %d critical tasks, %d workdays, %s → %s\n",
				m.Length, m.DurationDays, m.Start.Format("2006-01-02"), m.End.Format("2006-01-02"))
			return nil
		},
	}
}

func conflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Detect cycles, timing violations and resource overloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			r := &report.Reporter{Conflicts: conflict.Detect(snap.project, snap.tasks, snap.cal)}
			return output(r, func(r *report.Reporter) { r.PrintConflicts(os.Stdout) })
		},
	}
}

func estimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Compute the PERT project duration estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			est := estimate.Compute(snap.tasks, snap.cal)
			r := &report.Reporter{Estimate: &est}
			return output(r, func(r *report.Reporter) { r.PrintEstimate(os.Stdout) })
		},
	}
}

func milestonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "milestones",
		Short: "List milestone tasks (high priority or highly connected)",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			r := &report.Reporter{Milestones: report.Milestones(snap.tasks)}
			return output(r, func(r *report.Reporter) { r.PrintMilestones(os.Stdout) })
		},
	}
}

func deadlinesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: "List upcoming and overdue deadline alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			horizon := flagHorizon
			if horizon == 0 {
				horizon = snap.cfg.HorizonDays
			}
			r := &report.Reporter{Deadlines: report.Deadlines(snap.tasks, time.Now(), horizon)}
			return output(r, func(r *report.Reporter) { r.PrintDeadlines(os.Stdout) })
		},
	}
	cmd.Flags().IntVar(&flagHorizon, "horizon", 0, "Alert horizon in days (default from config)")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Produce the full schedule report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap, err := loadSnapshot(ctx)
			if err != nil {
				return err
			}

			r, err := fullReport(ctx, snap)
			if err != nil {
				return err
			}
			return output(r, func(r *report.Reporter) { r.PrintAll(os.Stdout) })
		},
	}
	cmd.Flags().BoolVar(&flagEnrich, "enrich", false, "Add a Claude-generated narrative (degrades gracefully)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Override the enrichment model")
	cmd.Flags().IntVar(&flagHorizon, "horizon", 0, "Alert horizon in days (default from config)")
	return cmd
}

// fullReport computes every section. The sections are independent pure
// functions of the snapshot, so they run concurrently.
func fullReport(ctx context.Context, snap *snapshot) (*report.Reporter, error) {
	r := &report.Reporter{}
	now := time.Now()
	horizon := flagHorizon
	if horizon == 0 {
		horizon = snap.cfg.HorizonDays
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.Chart, r.CPM = buildSchedule(snap)
		return gctx.Err()
	})
	g.Go(func() error {
		r.Conflicts = conflict.Detect(snap.project, snap.tasks, snap.cal)
		return gctx.Err()
	})
	g.Go(func() error {
		est := estimate.Compute(snap.tasks, snap.cal)
		r.Estimate = &est
		return gctx.Err()
	})
	g.Go(func() error {
		r.Milestones = report.Milestones(snap.tasks)
		r.Deadlines = report.Deadlines(snap.tasks, now, horizon)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Narrative = narrate(ctx, snap, r.Chart, r.CPM, r.Conflicts.Summary.Total, r.Estimate.WorkingDays.Expected)
	return r, nil
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Import a project snapshot JSON file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.New(flagDB)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer s.Close()

			projectID, err := s.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s imported project %s\n", ui.BoldGreen("✓"), ui.BoldMagenta(projectID))
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Recompute and re-render the schedule whenever the database changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			render := func() {
				snap, err := loadSnapshot(ctx)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s %v\n", ui.Red("✗"), err)
					return
				}
				chart, result := buildSchedule(snap)
				r := &report.Reporter{Chart: chart, CPM: result}
				fmt.Print("\033[H\033[2J") // clear screen
				r.PrintSchedule(os.Stdout)
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// Watch the directory: sqlite rewrites the db file and its WAL
			// sidecars, which replaces inodes.
			dir := filepath.Dir(flagDB)
			if dir == "" {
				dir = "."
			}
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}

			render()

			base := filepath.Base(flagDB)
			var debounce *time.Timer
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !strings.HasPrefix(filepath.Base(event.Name), base) {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					// Coalesce bursts of writes into one recompute.
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(250*time.Millisecond, render)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "%s watch error: %v\n", ui.Red("✗"), err)
				}
			}
		},
	}
}
