//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the shadowsync project using Mage.
//
// Usage:
//
//	mage build          Compile shadowsync binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Run tests and write coverage.out
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install shadowsync to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main

const (
	binGo      = "go"
	binaryName = "shadowsync"
	binaryDir  = "bin"
	cmdDir     = "./cmd/shadowsync"
	modulePath = "github.com/mesh-intelligence/shadowsync"
)
