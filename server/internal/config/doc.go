// Package config loads the launchdash server configuration from the `server:`
// section of config.yaml.
//
// Config fields:
//   - HTTPPort        port for the REST API, WebSocket and /metrics (default 8051)
//   - LogLevel        debug | info | warn | error (default info), applied live
//   - UIDir           optional directory of pre-built UI static files
//   - Dataset.Path    launch table, .csv/.tsv/.txt/.xlsx (default spacex_launch_dash.csv)
//   - Dataset.Delimiter, Dataset.Columns.*: source format overrides
//   - Slider.Min/Max/Step: payload slider bounds (default 0/10000/1000)
//   - WS.PingPeriod, WS.PongWait: WebSocket keepalive
//
// Load(path) applies defaults, the YAML file, an optional .env file beside
// it and LAUNCHDASH_* environment variables, in that order, then validates.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. The dataset itself is never
// reloaded; only settings that are safe to change live are applied.
package config
