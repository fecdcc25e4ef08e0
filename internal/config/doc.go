// Package config loads incdom.json, the settings file for the incdom
// command.
//
// # Configuration File Structure
//
//	{
//	  "assertions": true,
//	  "container": "div",
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "server": {
//	    "addr": ":3000",
//	    "readTimeout": "10s",
//	    "writeTimeout": "10s",
//	    "maxBodyBytes": 4194304,
//	    "maxSessions": 1000,
//	    "idleTimeout": "10m"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "incdom"
//	  }
//	}
//
// INCDOM_ADDR, INCDOM_LOG_LEVEL, INCDOM_ASSERTIONS and INCDOM_METRICS
// override the file when ApplyEnv is called.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
