package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
)

const (
	DefaultURL  = "http://localhost:7123/get_kicad_project_bom_and_ports"
	DefaultFile = "./power_sym_demo.zip"
)

type Options struct {
	URL     string        `short:"u" long:"url" env:"PROBE_URL" default:"http://localhost:7123/get_kicad_project_bom_and_ports" description:"Extraction endpoint to upload to"`
	File    string        `short:"f" long:"file" env:"PROBE_FILE" default:"./power_sym_demo.zip" description:"Archive to upload: a local path or minio://<bucket>/<key>"`
	Timeout time.Duration `short:"t" long:"timeout" env:"PROBE_TIMEOUT" default:"0s" description:"Give up waiting for the server after this long (0 waits forever)"`
	Field   string        `long:"field" env:"PROBE_FIELD" default:"file" description:"Multipart form field carrying the archive"`
}

// Parse reads options from args, falling back to PROBE_* environment
// variables and then to the built-in defaults.
func Parse(args []string) (*Options, *flags.Parser, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Usage = "[OPTIONS]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, parser, err
	}

	if len(rest) > 0 {
		return nil, parser, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	if err := opts.Validate(); err != nil {
		return nil, parser, err
	}

	return &opts, parser, nil
}

func (o *Options) Validate() error {
	if !strings.HasPrefix(o.URL, "http://") && !strings.HasPrefix(o.URL, "https://") {
		return fmt.Errorf("invalid URL scheme %q: must be http:// or https://", o.URL)
	}
	if o.File == "" {
		return fmt.Errorf("file must not be empty")
	}
	if o.Field == "" {
		return fmt.Errorf("field must not be empty")
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", o.Timeout)
	}
	return nil
}

// IsHelp reports whether err is the request for usage text.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}
