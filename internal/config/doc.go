// Package config provides configuration parsing for pdfdesk.
//
// The configuration is stored in pdfdesk.yaml in the working directory.
// A missing file means defaults everywhere; command-line flags override
// file values.
//
// # Configuration File Structure
//
//	service:
//	  baseURL: http://localhost:5000
//	  timeout: 2m
//	  exclusive: false
//	server:
//	  host: localhost
//	  port: 8080
//	storage:
//	  driver: disk        # or s3
//	  dir: downloads
//	  bucket: my-bucket   # s3 only
//	  urlExpiry: 24h
//	log:
//	  level: info
//	toast:
//	  duration: 5s
//	messages:
//	  processing: "Procesando..."
//	zones:
//	  routes:
//	    - id: mergePdfArea
//	      title: Combine PDFs
//	    - id: compressPdfArea
//	      endpoint: /compress
//	      label: Drop a PDF to compress
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	table, _ := cfg.Table()
package config
