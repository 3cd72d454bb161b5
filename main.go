// Command siteprowl crawls a single site and reports every page,
// link and asset it finds.
package main

import "github.com/arcbound/siteprowl/cmd"

func main() {
	cmd.Execute()
}
