/*
 * Altair Relaxed - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/altair-relaxed/command"
	"github.com/rcornwell/altair-relaxed/config"
	"github.com/rcornwell/altair-relaxed/processor"
	"github.com/rcornwell/altair-relaxed/util/logger"
	"github.com/rcornwell/altair-relaxed/vm"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "altair.toml", "Machine description file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Verbose logging to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("create log file", "error", err)
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("Altair Relaxed started")

	machine := vm.New(Logger)

	var procs []*processor.Processor
	if _, err := os.Stat(*optConfig); err == nil {
		cfg, err := config.Load(*optConfig)
		if err != nil {
			Logger.Error("load config", "error", err)
			os.Exit(1)
		}
		for _, pc := range cfg.Processor {
			words, err := config.LoadBootCode(pc.BootFile)
			if err != nil {
				Logger.Error("load boot code", "processor", pc.Name, "error", err)
				os.Exit(1)
			}
			p, err := machine.CreateProcessor(words)
			if err != nil {
				Logger.Error("create processor", "processor", pc.Name, "error", err)
				os.Exit(1)
			}
			procs = append(procs, p)
		}
		for _, mc := range cfg.Memory {
			buf := make([]byte, mc.Size)
			if _, err := machine.CreatePhysicalMemory(buf); err != nil {
				Logger.Error("create physical memory", "memory", mc.Name, "error", err)
				os.Exit(1)
			}
		}
	} else {
		Logger.Warn("no configuration file found, starting with an empty machine", "path", *optConfig)
	}

	dispatcher := command.New(machine, procs, os.Stdout, Logger)

	if err := command.ConsoleReader(dispatcher); err != nil {
		Logger.Error("console", "error", err)
		os.Exit(1)
	}

	for _, p := range procs {
		if err := machine.DestroyProcessor(p); err != nil {
			Logger.Warn("destroy processor", "error", err)
		}
	}
	if err := machine.Close(); err != nil {
		Logger.Warn("close machine", "error", err)
	}
	Logger.Info("Altair Relaxed stopped")
}
