package main

import (
	"sync"

	"cloud.google.com/go/storage"

	"github.com/carbocation/dicomexplorer/explorer"
)

type Global struct {
	log           logger
	storageClient *storage.Client
	explorer      *explorer.Explorer

	Site      string
	Company   string
	Email     string
	SnailMail string

	Folder string
	Config *Config

	// mu serializes dataset edits and per-entry view state. The
	// explorer's own lock only covers collection membership, so any
	// handler that reads or mutates an entry's dataset or view holds
	// this first.
	mu sync.Mutex
}

func (g *Global) Explorer() *explorer.Explorer {
	return g.explorer
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
