package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mgiorello/turnero/internal/config"
	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/schedule"
	"github.com/mgiorello/turnero/pkg/core/services"
	"github.com/mgiorello/turnero/pkg/core/shiftgen"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
	"github.com/mgiorello/turnero/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	store  *schedule.Store
	logger *zap.Logger
}

var (
	configPath string
	verbose    bool
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "turnero",
		Short: "Turnero CLI - Manage staff shift schedules",
		Long:  `A CLI tool for managing staff shift schedules, coverage requirements, and automatic assignment.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: turnero.yaml in cwd or home)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on the console")

	rootCmd.AddCommand(listStaffCmd())
	rootCmd.AddCommand(listShiftsCmd())
	rootCmd.AddCommand(coverageCmd())
	rootCmd.AddCommand(addShiftCmd())
	rootCmd.AddCommand(deleteShiftCmd())
	rootCmd.AddCommand(autoAssignCmd())
	rootCmd.AddCommand(publishCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and the in-memory schedule store
func initApp() error {
	var err error
	app = &App{}

	app.logger, err = logging.Init(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Debug("Loading configuration")
	if configPath != "" {
		app.cfg, err = config.LoadFromPath(configPath)
	} else {
		app.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.store, err = services.LoadSchedule(app.cfg, model.UUIDGenerator{}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	return nil
}

// saveSchedule persists the store after a mutating command, when a schedule
// file is configured.
func saveSchedule() error {
	if app.cfg.ScheduleFile == "" {
		fmt.Println("Note: no scheduleFile configured, changes were not persisted.")
		return nil
	}
	return services.SaveSchedule(app.store, app.cfg.ScheduleFile, app.logger)
}

// Command definitions

func listStaffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listStaff",
		Short: "List staff members, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, _ := cmd.Flags().GetStringSlice("role")
			search, _ := cmd.Flags().GetString("search")
			homeOffice, _ := cmd.Flags().GetString("home-office")
			activeNow, _ := cmd.Flags().GetBool("active-now")
			flat, _ := cmd.Flags().GetBool("flat")

			tri := schedule.TriState(homeOffice)
			if tri != schedule.TriAll && tri != schedule.TriYes && tri != schedule.TriNo {
				return fmt.Errorf("home-office must be all, yes or no, got %q", homeOffice)
			}

			groupByRole := !flat
			app.store.SetFilters(schedule.FiltersPatch{
				Roles:       &roles,
				Search:      &search,
				HomeOffice:  &tri,
				ActiveNow:   &activeNow,
				GroupByRole: &groupByRole,
			})

			if !groupByRole {
				staff := app.store.FilteredStaff()
				fmt.Printf("\n%d staff member(s):\n\n", len(staff))
				for _, member := range staff {
					printStaffMember(member)
				}
				return nil
			}

			byRole := app.store.StaffByRole()
			roleNames := make([]string, 0, len(byRole))
			total := 0
			for role, members := range byRole {
				roleNames = append(roleNames, role)
				total += len(members)
			}
			sort.Strings(roleNames)

			fmt.Printf("\n%d staff member(s):\n", total)
			for _, role := range roleNames {
				fmt.Printf("\n%s:\n", role)
				for _, member := range byRole[role] {
					printStaffMember(member)
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringSlice("role", nil, "Only show these roles")
	cmd.Flags().String("search", "", "Accent-insensitive name search")
	cmd.Flags().String("home-office", "all", "Home office filter: all, yes or no")
	cmd.Flags().Bool("active-now", false, "Only staff with a shift covering the current time today")
	cmd.Flags().Bool("flat", false, "Do not group by role")

	return cmd
}

func printStaffMember(member model.StaffMember) {
	marker := " "
	if member.HomeOffice {
		marker = "H"
	}
	fmt.Printf("  %s %-28s %-20s %s-%s\n",
		marker, member.FullName, member.Role, member.StandardShiftStart, member.StandardShiftEnd)
}

func listShiftsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listShifts <date>",
		Short: "List the shifts on a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			if _, err := timeutil.ParseDate(date); err != nil {
				return err
			}
			statusFlag, _ := cmd.Flags().GetString("status")
			status := schedule.StatusFilter(statusFlag)
			if status != schedule.StatusAll && status != schedule.StatusOnlyDraft && status != schedule.StatusOnlyConfirmed {
				return fmt.Errorf("status must be all, draft or confirmed, got %q", statusFlag)
			}

			if holiday, ok := app.store.HolidayOn(date); ok {
				fmt.Printf("\n%s is a holiday: %s\n", date, holiday.Name)
			}

			names := make(map[string]string, len(app.store.Staff()))
			for _, member := range app.store.Staff() {
				names[member.ID] = member.FullName
			}

			shifts := app.store.ShiftsForDate(date, status)
			fmt.Printf("\n%d shift(s) on %s:\n\n", len(shifts), date)
			for _, shift := range shifts {
				name := names[shift.StaffID]
				if name == "" {
					name = shift.StaffID
				}
				fmt.Printf("  %s  %s-%s  %-28s %-10s %-10s %s\n",
					shift.ID, shift.Start, shift.End, name, shift.Type, shift.Status, shift.Source)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("status", "all", "Status filter: all, draft or confirmed")

	return cmd
}

func coverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage <date>",
		Short: "Show the coverage picture for a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetString("at")

			result, err := services.CoverageReport(app.store, args[0], at, app.logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nCoverage for %s:\n\n", result.Date)
			fmt.Printf("Shifts:       %d\n", result.ShiftCount)
			fmt.Printf("Staff shown:  %d\n", result.StaffVisible)
			fmt.Printf("Warnings:     %d\n", result.WarningCount)
			if result.PeakCount > 0 {
				fmt.Printf("Peak:         %d active at %s\n", result.PeakCount, result.PeakTime)
			}

			if result.Instant != "" {
				fmt.Printf("\nAt %s:\n", result.Instant)
				if len(result.ActiveStaff) == 0 {
					fmt.Println("  Nobody on shift.")
				}
				for _, name := range result.ActiveStaff {
					fmt.Printf("  %s\n", name)
				}
				for _, warning := range result.InstantWarnings {
					fmt.Printf("  ! %s short: %d of %d (window %s-%s)\n",
						warning.Role, warning.Current, warning.Required, warning.Start, warning.End)
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("at", "", "Instant (HH:MM) to drill into")

	return cmd
}

func addShiftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addShift <staff_id> <date> <start> <end>",
		Short: "Add a draft shift; crossing midnight splits it automatically",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftType, _ := cmd.Flags().GetString("type")
			repeat, _ := cmd.Flags().GetString("repeat")
			everyDay, _ := cmd.Flags().GetBool("every-day")
			weeks, _ := cmd.Flags().GetInt("weeks")
			until, _ := cmd.Flags().GetString("until")

			req := shiftgen.NormalizeRequest{
				StaffID: args[0],
				Date:    args[1],
				Start:   args[2],
				End:     args[3],
				Type:    model.ShiftType(shiftType),
			}
			if _, err := timeutil.ParseDate(req.Date); err != nil {
				return err
			}
			if req.Type != "" && !req.Type.IsValid() {
				return fmt.Errorf("unknown shift type %q", shiftType)
			}

			recurrence, err := recurrenceFromFlags(repeat, everyDay, weeks, until)
			if err != nil {
				return err
			}

			var created []model.Shift
			if recurrence.Active {
				created, err = app.store.AddRecurringShift(req, recurrence)
			} else {
				created, err = app.store.AddShift(req)
			}
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Created %d shift(s):\n\n", len(created))
			for _, shift := range created {
				fmt.Printf("  %s  %s  %s-%s\n", shift.ID, shift.Date, shift.Start, shift.End)
			}
			fmt.Println()

			return saveSchedule()
		},
	}

	cmd.Flags().String("type", "", "Shift type: standard, exception or overtime (default standard)")
	cmd.Flags().String("repeat", "", "Repeat on these weekdays, e.g. mon,tue,fri")
	cmd.Flags().Bool("every-day", false, "Repeat every day of the week")
	cmd.Flags().Int("weeks", 1, "Number of weeks to repeat for")
	cmd.Flags().String("until", "", "Repeat until this date (YYYY-MM-DD, inclusive; overrides --weeks)")

	return cmd
}

var weekdayNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

func recurrenceFromFlags(repeat string, everyDay bool, weeks int, until string) (model.RecurrenceConfig, error) {
	cfg := model.RecurrenceConfig{Weeks: weeks, UntilDate: until}
	if until != "" {
		if _, err := timeutil.ParseDate(until); err != nil {
			return cfg, fmt.Errorf("invalid --until: %w", err)
		}
	}

	switch {
	case everyDay:
		cfg.Active = true
		cfg.Mode = model.RecurrenceWeek
	case repeat != "":
		cfg.Active = true
		cfg.Mode = model.RecurrenceCustom
		for _, name := range strings.Split(repeat, ",") {
			index, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return cfg, fmt.Errorf("unknown weekday %q in --repeat", name)
			}
			cfg.Days[index] = true
		}
	}
	return cfg, nil
}

func deleteShiftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deleteShift <shift_id>",
		Short: "Delete a shift, its whole series, or the series tail from its weekday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, _ := cmd.Flags().GetBool("series")
			fromWeekday, _ := cmd.Flags().GetBool("from-weekday")
			if series && fromWeekday {
				return fmt.Errorf("--series and --from-weekday are mutually exclusive")
			}

			shiftID := args[0]
			switch {
			case fromWeekday:
				removed, err := app.store.DeleteSeriesFromWeekday(shiftID)
				if err != nil {
					return err
				}
				fmt.Printf("\n✓ Removed %d shift(s).\n\n", removed)
			case series:
				groupID := ""
				for _, shift := range app.store.Shifts() {
					if shift.ID == shiftID {
						groupID = shift.RecurrenceGroupID
					}
				}
				if groupID == "" {
					return fmt.Errorf("shift %s is not part of a recurring series", shiftID)
				}
				removed := app.store.DeleteSeries(groupID)
				fmt.Printf("\n✓ Removed %d shift(s).\n\n", removed)
			default:
				app.store.DeleteShift(shiftID)
				fmt.Printf("\n✓ Shift %s removed.\n\n", shiftID)
			}

			return saveSchedule()
		},
	}

	cmd.Flags().Bool("series", false, "Delete every shift in the recurring series")
	cmd.Flags().Bool("from-weekday", false, "Delete the series instances on this shift's weekday, from its date on")

	return cmd
}

func autoAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoAssign <week_of_date>",
		Short: "Automatically assign idle staff to coverage gaps for a week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			weekOf, err := timeutil.ParseDate(args[0])
			if err != nil {
				return err
			}

			result, err := services.AutoAssign(app.store, weekOf, dryRun, app.logger)
			if err != nil {
				return err
			}

			header := "✓ Auto-assignment completed!"
			if result.DryRun {
				header = "Auto-assignment dry run — nothing was saved."
			}
			fmt.Printf("\n%s\n\n", header)
			fmt.Printf("Week of %s: %d shift(s) assigned.\n", result.WeekStart, result.Assigned)
			for _, line := range result.Shifts {
				fmt.Printf("  %s\n", line)
			}

			if len(result.OpenGaps) > 0 {
				fmt.Printf("\n%d gap(s) left open:\n", len(result.OpenGaps))
				for _, gap := range result.OpenGaps {
					label := gap.RequirementID
					if label == "" {
						label = "daily minimum"
					}
					fmt.Printf("  ✗ %s %s (%s): %d of %d\n",
						gap.Date, gap.Role, label, gap.Assigned, gap.Requested)
				}
			}
			fmt.Println()

			if result.DryRun {
				return nil
			}
			return saveSchedule()
		},
	}

	cmd.Flags().Bool("dry-run", false, "Preview the assignments without changing the schedule")

	return cmd
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Confirm all draft shifts and save the schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmed := app.store.PublishChanges()
			if confirmed == 0 {
				fmt.Println("\nNo draft shifts to publish.")
				return nil
			}
			fmt.Printf("\n✓ Published %d shift(s).\n\n", confirmed)
			return saveSchedule()
		},
	}
}
