// Copyright 2023 RSocrata Authors

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Jerobie1/RSocrata/cache"
	"github.com/Jerobie1/RSocrata/soda"
	"github.com/Jerobie1/RSocrata/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	CacheDir string // default: ~/.rsocrata
	LogLevel logging.Level
	// Exactly one of -url or -all must be present.
	URL string // download one dataset and print it
	All bool   // download every dataset from config.toml into the cache
	CSV bool   // with -url: print CSV format; default: text
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("socrata-fetch", flag.ExitOnError)
	fs.StringVar(&flags.CacheDir, "cache",
		filepath.Join(os.Getenv("HOME"), ".rsocrata"),
		"path to the dataset cache")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.StringVar(&flags.URL, "url", "", "dataset URL to download and print")
	fs.BoolVar(&flags.All, "all", false,
		"download all datasets from config.toml into the cache")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if (flags.URL != "") == flags.All {
		return nil, errors.Reason("expected exactly one of -url or -all")
	}
	return &flags, err
}

// DatasetConfig is one dataset entry in config.toml.
type DatasetConfig struct {
	URL  string `toml:"url"`  // dataset or resource URL
	Name string `toml:"name"` // cache directory name
}

type Config struct {
	Datasets []DatasetConfig `toml:"datasets"`
}

func parseConfig(cacheDir string) (*Config, error) {
	filePath := filepath.Join(cacheDir, "config.toml")
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `[[datasets]]
url = "https://data.cityofchicago.org/resource/xzkq-xp2w.csv"
name = "employees"
`
			err = errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create config file containing:\n%s",
				filePath, sample)
			return nil, err
		} else {
			return nil, errors.Annotate(err,
				"cannot check config file for existence: '%s'", filePath)
		}
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	for i, ds := range c.Datasets {
		if ds.URL == "" || ds.Name == "" {
			return nil, errors.Reason(
				"dataset %d in %s must have both url and name", i, filePath)
		}
	}
	return &c, nil
}

// downloadOne fetches a single dataset and saves it in the cache.
func downloadOne(ctx context.Context, cacheDir string, d DatasetConfig) error {
	tbl, schema, err := soda.Fetch(ctx, d.URL)
	if err != nil {
		return errors.Annotate(err, "failed to fetch '%s'", d.URL)
	}
	w := cache.NewWriter(cacheDir, d.Name)
	if err := w.WriteTable(tbl); err != nil {
		return errors.Annotate(err, "failed to save table for '%s'", d.Name)
	}
	meta := w.Metadata
	meta.SourceURL = d.URL
	meta.Schema = make(map[string]string, len(schema))
	for f, tp := range schema {
		meta.Schema[f] = string(tp)
	}
	meta.FetchedAt = cache.Now()
	if err := w.WriteMetadata(meta); err != nil {
		return errors.Annotate(err, "failed to save metadata for '%s'", d.Name)
	}
	return nil
}

type downloadResult struct {
	name string
	err  error
}

// downloadAll fetches every configured dataset. Datasets are independent and
// download in parallel; each dataset's pages still load sequentially.
func downloadAll(ctx context.Context, flags *Flags) error {
	config, err := parseConfig(flags.CacheDir)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	f := func(d DatasetConfig) downloadResult {
		return downloadResult{name: d.Name, err: downloadOne(ctx, flags.CacheDir, d)}
	}
	pm := iterator.ParallelMap(ctx, 2*runtime.NumCPU(),
		iterator.FromSlice(config.Datasets), f)
	defer pm.Close()

	failed := iterator.Reduce[downloadResult, []string](pm, []string{},
		func(r downloadResult, failed []string) []string {
			if r.err != nil {
				return append(failed, r.name+": "+r.err.Error())
			}
			logging.Infof(ctx, "downloaded '%s'", r.name)
			return failed
		})
	if len(failed) > 0 {
		return errors.Reason("failed to download %d dataset(s):\n  %s",
			len(failed), strings.Join(failed, "\n  "))
	}
	return nil
}

func run(ctx context.Context, flags *Flags, w io.Writer) error {
	if flags.All {
		return downloadAll(ctx, flags)
	}
	tbl, err := soda.FetchDataset(ctx, flags.URL)
	if err != nil {
		return errors.Annotate(err, "failed to fetch '%s'", flags.URL)
	}
	if flags.CSV {
		err = tbl.WriteCSV(w, table.Params{})
	} else {
		err = tbl.WriteText(w, table.Params{})
	}
	return errors.Annotate(err, "failed to print the table")
}

// main is not tested, keep it short.
func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := run(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
