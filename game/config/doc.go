// Package config finds, caches and saves warehouse layout files.
//
// A Manager owns one directory. Every .json, .yaml or .yml file in it is a
// layout, addressed by its file name without the extension ("sample" for
// sample.json). A file describes one warehouse:
//
//	name: Wide stack
//	description: objects stacked against the east wall
//	enlarged: true
//	layout:
//	  - "#######"
//	  - "#...#.#"
//	  - "#.....#"
//	  - "#..OO@#"
//	  - "#..O..#"
//	  - "#.....#"
//	  - "#######"
//	instructions: "<vv<<^^<<^^"
//	messages:
//	  welcome: Push the objects around.
//
// Layout symbols are '#' obstacle, '.' empty, 'O' object, '@' agent and
// "[]" for an object two cells wide. Files are validated on load, and the
// parsed configs are cached until Invalidate or RefreshCache
// drops them. Watch drops them automatically when the directory changes:
//
//	manager, err := config.NewManager("configs")
//	...
//	go manager.Watch(ctx)
//	cfg, err := manager.LoadConfig("wide_stack")
//
// When no file can be loaded, GetDefault falls back to engine.DefaultConfig.
package config
