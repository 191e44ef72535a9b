// Package config loads endpoint declarations from YAML or JSON files.
//
// A config file holds one endpoint declaration or a list of them. Each
// list item is either an endpoint mapping, a nested list, or a string
// naming another config file to splice in at that position. Strings may
// be globs ("shared/**/*.yml") and are resolved relative to the file that
// references them.
//
//	- http:
//	    api: get /ping
//	  response: ok
//	- graphQL:
//	    method: post
//	    operations: [GetUser]
//	  response:
//	    template: user
//	- other-endpoints.yml
//
// ${VAR} and ${VAR:-default} are expanded from the environment before a
// file is parsed. Any failure aborts the whole load with a *LoadError.
package config
