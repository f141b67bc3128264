package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/dualsense-cmd/dualsense/internal/hid"
)

type List struct {
	JSON bool `help:"Print the controllers as a JSON array"`
}

// Run is called by Kong when the list command is executed.
func (l *List) Run(logger *slog.Logger) error {
	return l.Print(os.Stdout, hid.Default, logger)
}

func (l *List) Print(w io.Writer, backend hid.Backend, logger *slog.Logger) error {
	infos, err := backend.List()
	if err != nil {
		return err
	}
	logger.Debug("Enumerated controllers", "count", len(infos))

	if l.JSON {
		type entry struct {
			hid.Info
			Transport string `json:"transport"`
			Edge      bool   `json:"edge"`
		}
		out := make([]entry, 0, len(infos))
		for _, i := range infos {
			out = append(out, entry{Info: i, Transport: i.Transport.String(), Edge: i.Edge()})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No DualSense controllers found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSPORT\tPRODUCT\tSERIAL\tPATH")
	for _, i := range infos {
		product := i.Product
		if product == "" {
			product = fmt.Sprintf("%04x:%04x", i.VendorID, i.ProductID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", i.Transport, product, i.Serial, i.Path)
	}
	return tw.Flush()
}
