package output_test

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/output"
)

// Example showing how to render the paths a monitor holds
func ExampleRenderDetailsTable() {
	details := []monitor.FileDetails{
		{Path: "/srv/app/config.xml", ModTime: time.Now().Add(-2 * time.Hour)},
		{Path: "/srv/app/lib/config.xml", ModTime: time.Now().Add(-26 * time.Hour)},
	}

	fmt.Println(output.RenderDetailsTable(details))
}

// Example showing how to use a spinner
func ExampleSpinner() {
	spinner := output.NewSpinner("Scanning watches").Start()

	// Simulate some work
	time.Sleep(200 * time.Millisecond)

	spinner.StopWithMessage("✓ Scan complete")
}
