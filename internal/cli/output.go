package cli

import (
	"dnet/internal/config"
	iolib "dnet/lib/io"
	sliceutil "dnet/lib/slice"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// maxPayload bounds what builders read from stdin; nothing larger fits in
// an IP packet.
const maxPayload = 0xffff

func readPayload(cmd *cobra.Command) ([]byte, error) {
	b, err := iolib.ReadAtMost(cmd.InOrStdin(), maxPayload)
	if err != nil {
		return nil, errors.Wrap(err, "reading stdin")
	}
	return b, nil
}

func writeBytes(cmd *cobra.Command, b []byte) error {
	if _, err := iolib.WriteFull(cmd.OutOrStdout(), b); err != nil {
		return errors.Wrap(err, "writing stdout")
	}
	return nil
}

// render prints entries one per line with text, or as a YAML sequence when
// YAML output is configured.
func render[E any](a *app, w io.Writer, entries []E, text func(E) string) error {
	if a.cfg.Output == config.OutputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	}

	if len(entries) == 0 {
		return nil
	}
	lines := sliceutil.Map(entries, text)
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func stringer[E interface{ String() string }](e E) string { return e.String() }
