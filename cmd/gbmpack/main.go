/*
NAME
  gbmpack

DESCRIPTION
  gbmpack packages a .gbm/.gbs pair into a single GBFS archive playable by
  the gbmplay driver, mirroring the reference packager's two call forms.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gbmpack is a CLI for bundling a GBM video stream and a GBS audio
// stream into one GBFS archive.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tinyreel/gbmplayer/container/gbfs"
)

const (
	logPath      = "gbmpack.log"
	logMaxSize   = 10 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	l := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	outputPath, gbmPath, gbsPath, err := parseArgs(os.Args[1:])
	if err != nil {
		l.Error("bad arguments", "error", err)
		printUsage(os.Args[0])
		os.Exit(1)
	}

	if err := pack(outputPath, gbmPath, gbsPath); err != nil {
		l.Fatal("packaging failed", "error", err)
	}
	l.Info("wrote archive", "path", outputPath)
	fmt.Printf("Created: %s\n", outputPath)
}

// parseArgs mirrors the reference packager's two invocation forms:
//
//	gbmpack input.gbm input.gbs              (auto-generates input.gba)
//	gbmpack output.gba input.gbm input.gbs   (explicit output name)
func parseArgs(args []string) (outputPath, gbmPath, gbsPath string, err error) {
	switch len(args) {
	case 2:
		for _, a := range args {
			switch {
			case hasSuffixFold(a, ".gbm"):
				gbmPath = a
			case hasSuffixFold(a, ".gbs"):
				gbsPath = a
			}
		}
		if gbmPath == "" || gbsPath == "" {
			return "", "", "", errors.New("need one .gbm and one .gbs file")
		}
		base := strings.TrimSuffix(gbmPath, filepath.Ext(gbmPath))
		outputPath = uniquePath(base + ".gba")
		return outputPath, gbmPath, gbsPath, nil
	case 3:
		return args[0], args[1], args[2], nil
	default:
		return "", "", "", errors.New("wrong number of arguments")
	}
}

func hasSuffixFold(s, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(s), suffix)
}

// uniquePath appends _1, _2, ... before the extension until it finds a
// path that doesn't already exist, mirroring make_unique_path.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i < 1000; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
	return path
}

func printUsage(prog string) {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s input.gbm input.gbs              (auto-generates input.gba)\n", prog)
	fmt.Fprintf(os.Stderr, "  %s output.gba input.gbm input.gbs   (explicit output name)\n", prog)
}

func pack(outputPath, gbmPath, gbsPath string) error {
	gbmData, err := os.ReadFile(gbmPath)
	if err != nil {
		return errors.Wrap(err, "reading gbm file")
	}
	gbsData, err := os.ReadFile(gbsPath)
	if err != nil {
		return errors.Wrap(err, "reading gbs file")
	}

	archive, err := gbfs.Build([]gbfs.File{
		{Name: "movie.gbm", Data: gbmData},
		{Name: "movie.gbs", Data: gbsData},
	})
	if err != nil {
		return errors.Wrap(err, "building gbfs archive")
	}

	if err := os.WriteFile(outputPath, archive, 0o644); err != nil {
		return errors.Wrap(err, "writing output file")
	}
	return nil
}
