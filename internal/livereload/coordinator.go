package livereload

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/royalfig/ghost-theme-dev/internal/bundler"
)

// Wire message prefixes understood by the browser snippet and theme
// tooling. Template changes reload without a rebuild; asset changes
// follow a completed build.
const (
	templateChangedPrefix = "HBS changed: "
	fileChangedPrefix     = "File changed: "
)

// Broadcaster delivers a plain-text message to all connected clients.
// Implemented by Hub.
type Broadcaster interface {
	Broadcast(text string)
}

// Coordinator turns build results and template change events into
// console reports and client notifications. hub may be nil in one-shot
// mode, where only the console report is produced.
type Coordinator struct {
	hub Broadcaster
	out io.Writer
	now func() time.Time
}

// NewCoordinator creates a coordinator writing reports to stdout.
func NewCoordinator(hub Broadcaster) *Coordinator {
	return &Coordinator{
		hub: hub,
		out: os.Stdout,
		now: time.Now,
	}
}

// BuildCompleted renders the build report and, when a trigger path is
// given, broadcasts the change notification to connected clients.
func (c *Coordinator) BuildCompleted(result *bundler.BuildResult, trigger string) {
	c.printReport(result, trigger)

	if c.hub != nil && trigger != "" {
		c.hub.Broadcast(fileChangedPrefix + trigger)
	}
}

// TemplateChanged relays a template change as a reload signal. No build
// report is produced because no build ran.
func (c *Coordinator) TemplateChanged(path string) {
	fmt.Fprintf(c.out, "[%s] template changed: %s\n", c.now().Format("15:04:05"), path)

	if c.hub != nil {
		c.hub.Broadcast(templateChangedPrefix + path)
	}
}

// printReport writes the per-artifact summary table.
func (c *Coordinator) printReport(result *bundler.BuildResult, trigger string) {
	if trigger != "" {
		fmt.Fprintf(c.out, "[%s] triggered by %s\n", c.now().Format("15:04:05"), trigger)
	} else {
		fmt.Fprintf(c.out, "[%s] build complete\n", c.now().Format("15:04:05"))
	}

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Artifact", "Size"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, a := range result.Artifacts {
		table.Append([]string{a.Path, a.Size})
	}
	table.Render()

	fmt.Fprintf(c.out, "built in %s\n", result.Elapsed.Round(time.Millisecond))
}
