// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// contigfilter filters the contigs of genome assemblies by length.
//
// It serves the ContigFilter JSON-RPC methods over HTTP, and provides
// local subcommands to filter and summarise multi-FASTA DNA files and
// to manage the assemblies held in a workspace.
//
//	contigfilter serve --config deploy.cfg
//	contigfilter filter --in contigs.fna --min 2500 > long.fna
//	contigfilter stats --in contigs.fna
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("contigfilter", "err", err)
		os.Exit(1)
	}
}
