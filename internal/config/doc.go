// Package config provides configuration parsing for the loadbench CLI.
//
// The configuration is stored in loadbench.json and is optional: when
// the file is absent every value comes from the selected benchmark
// profile. Zero-valued workload fields fall back to the profile too,
// so a config file only needs the fields it wants to override.
//
// # Configuration File Structure
//
//	{
//	  "profile": "standard",
//	  "listen": {
//	    "host": "127.0.0.1",
//	    "port": 0,
//	    "metrics": true
//	  },
//	  "workload": {
//	    "managers": 16,
//	    "clients": 200,
//	    "duration": "30s",
//	    "refreshRate": 5,
//	    "opLatency": "10ms",
//	    "failureRate": 0.05,
//	    "seed": 42
//	  },
//	  "report": {
//	    "json": "bench.json"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOptional(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Profile:", cfg.Profile)
package config
