/*
NAME
  gbmplay

DESCRIPTION
  gbmplay plays a packaged GBFS archive (or a drop folder of them):
  it opens the archive's movie.gbm/movie.gbs pair, drives them through
  playback.Driver and writes decoded audio to a WAV file (and, with -alsa,
  to a local ALSA device when one can be opened) and decoded video to a
  raw RGB555 file.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package gbmplay is the playback CLI: point it at one archive, or at a
// folder it should watch for newly dropped archives.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tinyreel/gbmplayer/codec/pcm"
	"github.com/tinyreel/gbmplayer/container/gbfs"
	"github.com/tinyreel/gbmplayer/playback"
)

const (
	logPath      = "gbmplay.log"
	logMaxSize   = 10 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	archivePath := flag.String("archive", "", "Path to a .gba GBFS archive to play.")
	watchDir := flag.String("watch", "", "Directory to watch for newly dropped .gba archives.")
	outDir := flag.String("out", ".", "Directory to write decoded .wav files to.")
	useALSA := flag.Bool("alsa", false, "Also play decoded audio through the local ALSA device.")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	l := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	switch {
	case *archivePath != "":
		if err := playArchive(l, *archivePath, *outDir, *useALSA); err != nil {
			l.Fatal("playback failed", "path", *archivePath, "error", err)
		}
	case *watchDir != "":
		if err := watchAndPlay(l, *watchDir, *outDir, *useALSA); err != nil {
			l.Fatal("watch failed", "dir", *watchDir, "error", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: gbmplay -archive FILE.gba | -watch DIR [-out DIR] [-alsa]")
		os.Exit(1)
	}
}

// watchAndPlay plays every .gba archive already present in dir, then
// plays each one fsnotify reports as newly created.
func watchAndPlay(l logging.Logger, dir, outDir string, useALSA bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, "reading watch directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".gba") {
			path := filepath.Join(dir, e.Name())
			if err := playArchive(l, path, outDir, useALSA); err != nil {
				l.Error("playback failed", "path", path, "error", err)
			}
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating fsnotify watcher")
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return errors.Wrap(err, "watching directory")
	}

	l.Info("watching for dropped archives", "dir", dir)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(ev.Name), ".gba") {
				continue
			}
			if err := playArchive(l, ev.Name, outDir, useALSA); err != nil {
				l.Error("playback failed", "path", ev.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Warning("watcher error", "error", err)
		}
	}
}

// playArchive opens a GBFS archive, drives it through a Driver and
// writes a WAV alongside the archive's raw video frames.
func playArchive(l logging.Logger, archivePath, outDir string, useALSA bool) error {
	raw, err := os.ReadFile(archivePath)
	if err != nil {
		return errors.Wrap(err, "reading archive")
	}
	a, err := gbfs.Open(raw)
	if err != nil {
		return errors.Wrap(err, "opening archive")
	}
	gbmData, _, ok := a.FindByExtension("gbm")
	if !ok {
		return errors.New("archive has no .gbm entry")
	}
	gbsData, _, ok := a.FindByExtension("gbs")
	if !ok {
		return errors.New("archive has no .gbs entry")
	}

	d, err := playback.New(l, gbmData, gbsData)
	if err != nil {
		return errors.Wrap(err, "initializing driver")
	}

	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))

	wavFile, err := os.Create(filepath.Join(outDir, base+".wav"))
	if err != nil {
		return errors.Wrap(err, "creating wav output")
	}
	defer wavFile.Close()

	videoFile, err := os.Create(filepath.Join(outDir, base+".rgb555"))
	if err != nil {
		return errors.Wrap(err, "creating video output")
	}
	defer videoFile.Close()

	wav := playback.NewWavSink(wavFile, int(gbsSampleRate(gbmData, gbsData)), channelsFor(gbsData))
	vsink := playback.NewRawVideoSink(videoFile)

	var asink playback.AudioSink = wav
	if useALSA {
		alsa, err := playback.NewAlsaSink(int(gbsSampleRate(gbmData, gbsData)), channelsFor(gbsData))
		if err != nil {
			l.Warning("ALSA unavailable, continuing with WAV only", "error", err)
		} else {
			asink = multiAudioSink{wav, alsa}
		}
	}

	d.Play()
	if err := d.Run(context.Background(), vsink, asink); err != nil {
		return errors.Wrap(err, "running playback")
	}
	if err := asink.Close(); err != nil {
		return errors.Wrap(err, "closing audio output")
	}
	l.Info("finished playback", "archive", archivePath)
	return nil
}

// multiAudioSink fans samples out to every sink in the slice, first-error
// wins.
type multiAudioSink []playback.AudioSink

func (m multiAudioSink) WriteSamples(buf pcm.Buffer) error {
	for _, s := range m {
		if err := s.WriteSamples(buf); err != nil {
			return err
		}
	}
	return nil
}

func (m multiAudioSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// gbsSampleRate and channelsFor read just enough of the GBS header to
// size the WAV/ALSA sinks before the driver itself opens the stream.
func gbsSampleRate(gbmData, gbsData []byte) uint32 {
	_ = gbmData
	switch gbsData[8] {
	case 0, 2, 3, 4:
		return 22050
	case 1:
		return 11025
	default:
		return 22050
	}
}

func channelsFor(gbsData []byte) int {
	if gbsData[8] == 0 {
		return 2
	}
	return 1
}
