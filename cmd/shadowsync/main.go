// Command shadowsync is the shadowsync CLI.
package main

import "github.com/mesh-intelligence/shadowsync/internal/cli"

func main() {
	cli.Execute()
}
