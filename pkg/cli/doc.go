// Package cli provides the voodoo command line.
//
// Commands:
//   - run: load a config and serve it until interrupted
//   - validate: load a config and report what it declares
//   - version: show build information
//
// Every flag can also be set through a VOODOO_ environment variable, for
// example VOODOO_PORT_RANGE for --port-range.
package cli
