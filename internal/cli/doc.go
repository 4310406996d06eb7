// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the docflow command line with cobra.

# Commands

	docflow                        interactive terminal client
	docflow login|logout|whoami    session
	docflow contracts ...          list, show, create, update, delete, download
	docflow documents ...          list, show, upload, update, delete, download
	docflow notifications ...      list, read, read-all, delete, watch
	docflow config ...             show, get, set, path
	docflow version

Every command except login, logout, config and version restores the saved
session first and exits with code 3 when there is none.

# Output

Tables by default. --output json and --output yaml print a Response
envelope on stdout; human messages and prompts then go to stderr.

# Exit codes

	0    success
	1    failure (backend error, network, file system)
	2    invalid arguments or flags
	3    not signed in, session expired, wrong credentials
	130  interrupted

# Usage

	code := cli.Execute(ctx, os.Args[1:], cli.Options{Build: build})
	os.Exit(code)
*/
package cli
