package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/jask/antani/internal/config"
	"github.com/jask/antani/internal/copier"
	"github.com/jask/antani/internal/logging"
	"github.com/jask/antani/internal/picker"
	"github.com/jask/antani/internal/transfer"
	"github.com/jask/antani/internal/tui"
	"github.com/jask/antani/internal/volume"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "antani needs an interactive terminal")
		return 2
	}

	path := config.Path()
	created, err := config.WriteDefault(path)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	if created {
		// fresh install: make the default volume directories usable
		for _, v := range cfg.Volumes {
			if err := os.MkdirAll(v.Root, 0o755); err != nil {
				log.Printf("create volume %s: %v", v.Name, err)
				return 1
			}
		}
	}

	logger, closer, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		log.Printf("logging: %v", err)
		return 1
	}
	defer closer.Close()
	entry := logrus.NewEntry(logger)

	mounts := make([]volume.Mount, 0, len(cfg.Volumes))
	for _, v := range cfg.Volumes {
		mounts = append(mounts, volume.Mount{Name: v.Name, Root: v.Root})
	}
	fs, err := volume.NewHostFS(mounts)
	if err != nil {
		entry.WithError(err).Error("cannot mount volumes")
		log.Printf("volumes: %v", err)
		return 1
	}
	entry.WithFields(logrus.Fields{"config": path, "volumes": fs.Volumes()}).Info("starting")

	cp := copier.New(copier.WithChunkSize(cfg.Transfer.ChunkSize), copier.WithLogger(entry))
	engine := transfer.New(fs, cp, transfer.WithLogger(entry))

	model := tui.New(tui.Options{
		FS:      fs,
		Volumes: fs.Volumes(),
		Engine:  engine,
		Picker: []picker.Option{
			picker.WithVisibleRows(cfg.Picker.VisibleRows),
			picker.WithLimits(picker.Limits{
				MaxDirs:  cfg.Picker.MaxDirs,
				MaxFiles: cfg.Picker.MaxFiles,
				MaxDepth: cfg.Picker.MaxDepth,
			}),
		},
		Logger: entry,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		entry.WithError(err).Error("ui exited with error")
		log.Printf("run: %v", err)
		return 1
	}
	entry.Info("bye")
	return 0
}
