// Package app is the composition root of gdview.
//
// Run wires the pieces together:
//
//	Run()
//	  ├─> config.Load()        read ~/.config/gdview/config.toml
//	  ├─> applyOverrides()     -host, -token, -push
//	  ├─> configureLogging()   glog into log_dir
//	  ├─> prefs.Load()         theme and zoom
//	  ├─> httpgd.NewClient()   transport
//	  ├─> supervisor.Start()   connection state machine, then Open()
//	  └─> ui.Run()             Bubble Tea program (blocks)
//
// On exit the supervisor is closed, its context cancelled, and Run waits for
// the loop to finish so no timer or socket outlives the program.
//
// Fatal errors are a broken config file, an unusable host and a log
// directory that cannot be created. Server outages are not errors; the
// supervisor degrades to slow polling and the header shows it.
package app
