package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/model"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func writeBeer(w io.Writer, beer *model.Beer) {
	fmt.Fprintf(w, "%8d  %-28s %-24s %-28s %5.1f%%  %3d IBU\n",
		beer.ID, beer.Name, beer.Brand, beer.Style, beer.Alcohol, beer.IBU)
}

// writeReport prints one line per record of the batch followed by a summary
func writeReport(w io.Writer, report *model.IngestReport) {
	dimColor.Fprintf(w, "batch %s\n", report.BatchID)

	for _, o := range report.Outcomes {
		switch o.Status {
		case model.PersistStatusPersisted:
			okColor.Fprint(w, "  saved     ")
		case model.PersistStatusDuplicate:
			warnColor.Fprint(w, "  duplicate ")
		default:
			failColor.Fprint(w, "  failed    ")
		}
		writeBeer(w, o.Beer)
		if o.Err != nil && o.Status == model.PersistStatusFailed {
			dimColor.Fprintf(w, "            %s\n", o.Err.Error())
		}
	}

	fmt.Fprintf(w, "%s persisted, %s duplicate, %s failed\n",
		okColor.Sprint(len(report.Persisted())),
		warnColor.Sprint(len(report.Duplicates())),
		failColor.Sprint(len(report.Failures())))
}

func writePreview(w io.Writer, beers []*model.Beer) {
	for _, beer := range beers {
		writeBeer(w, beer)
	}
	dimColor.Fprintf(w, "%d records (not saved)\n", len(beers))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	return nil
}
