// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

/*
Package main is the entry point for the Fleetgraph server.

Fleetgraph keeps a bipartite graph of customers and the cars they rented and
serves popularity rankings, "customers who rented this also rented"
recommendations and car category pricing over a REST API.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("fleetgraph")
	├── DataSupervisor ("data-layer")
	│   └── Graph rebuild service (startup + periodic rebuilds)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Event router (rental events, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (Chi router)

Startup order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON/console output
 3. Store: memory, BadgerDB or DuckDB, optionally behind circuit breakers
 4. Seed import: customers.csv, cars.csv and travel_history.csv
 5. Analytics service: caches, categories and an empty graph
 6. Event pipeline: Watermill GoChannel, router and publisher
 7. HTTP server and supervisor tree

The readiness probe reports 503 until the first graph build succeeds.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for HTTP_SHUTDOWN_TIMEOUT, the event router finishes in-flight
messages and the store is closed last.

# Example Usage

	export STORE_DRIVER=badger
	export BADGER_PATH=/var/lib/fleetgraph
	export DATA_DIR=/data/seed
	export EVENTS_ENABLED=true
	./fleetgraph
*/
package main
