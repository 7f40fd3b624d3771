// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point of the blogicum binary: the web server
// plus the migration and admin commands.
package main

import "blogicum/cmd/blogicum/commands"

func main() {
	commands.Execute()
}
