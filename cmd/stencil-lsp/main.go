// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/eddie-c-davis/gt4py/internal/config"
	"github.com/eddie-c-davis/gt4py/internal/lsp"
)

const lsName = "stencil"

var handler protocol.Handler

func main() {
	configPath := flag.String("config", "", "build options file (YAML)")
	flag.Parse()

	// Debug logging to stderr; stdout carries the protocol.
	commonlog.Configure(1, nil)
	log := commonlog.GetLogger("stencil.lsp")

	opts := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Errorf("%s", err)
			os.Exit(1)
		}
		opts = loaded
	}

	stencilHandler := lsp.NewStencilHandler(opts)

	handler = protocol.Handler{
		Initialize:                     stencilHandler.Initialize,
		Initialized:                    stencilHandler.Initialized,
		Shutdown:                       stencilHandler.Shutdown,
		SetTrace:                       stencilHandler.SetTrace,
		TextDocumentDidOpen:            stencilHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           stencilHandler.TextDocumentDidClose,
		TextDocumentDidChange:          stencilHandler.TextDocumentDidChange,
		TextDocumentCompletion:         stencilHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: stencilHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Info("starting stencil language server")
	if err := s.RunStdio(); err != nil {
		log.Errorf("language server stopped: %s", err)
		os.Exit(1)
	}
}
