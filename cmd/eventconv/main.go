package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"eventconv/internal/config"
	"eventconv/internal/convert"
	"eventconv/internal/ics"
	appLog "eventconv/internal/log"
	"eventconv/internal/model"
	"eventconv/internal/sheet"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		usage()
		os.Exit(2)
	}

	conf, err := config.Load(config.File)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", config.File)
		os.Exit(1)
	}

	input := conf.Input
	if flag.NArg() == 1 {
		input = flag.Arg(0)
	}

	appLog.Info("eventconv starting", "input", input, "output", conf.Output)

	// A .ics extension selects the booking-calendar reader; everything
	// else is treated as a spreadsheet export.
	var rows []model.Row
	if strings.EqualFold(filepath.Ext(input), ".ics") {
		rows, err = ics.Load(input, conf.ICSOptions())
	} else {
		rows, err = sheet.Load(input)
	}
	if err != nil {
		appLog.Error("failed to read input", err, "path", input)
		os.Exit(1)
	}

	res, err := convert.Run(rows, conf.ConvertOptions())
	if err != nil {
		appLog.Error("conversion failed", err, "rows", len(rows))
		os.Exit(1)
	}

	if err := convert.WriteFile(conf.Output, res.Records); err != nil {
		appLog.Error("failed to write output", err, "path", conf.Output)
		os.Exit(1)
	}

	appLog.Info("wrote meeting data",
		"path", conf.Output,
		"records", len(res.Records),
		"rows", res.Stats.Rows,
		"free_slots", res.Stats.FreeSlots,
		"bad_dates", res.Stats.BadDates,
		"missing_fields", res.Stats.MissingFields,
		"duplicates", res.Stats.Duplicates,
		"newest", res.Records[0].Date,
		"oldest", res.Records[len(res.Records)-1].Date,
	)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"usage: eventconv [input.csv | input.ics]\n\n"+
			"Converts the meeting spreadsheet (or a booking-calendar export) into\n"+
			"the JSON file the website reads. With no argument the configured\n"+
			"input file is used. Settings come from %s when present.\n",
		config.File)
}
