// voodoo serves declared mock HTTP and GraphQL endpoints.
package main

import "github.com/getmockd/voodoo/pkg/cli"

func main() {
	cli.Execute()
}
