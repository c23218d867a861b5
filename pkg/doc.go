// Package pkg holds the libraries behind stackdiagrams, which draws the
// architecture diagrams of an OpenTelemetry observability stack.
//
// # Overview
//
// A diagram is a set of icon nodes grouped into nested clusters and joined
// by styled edges. The packages build, serialize and render those diagrams:
//
//  1. [diagram] - Nodes, clusters, edges and the fluent Builder
//  2. [topology] - The built-in diagrams (high-level design, OTLP flow)
//  3. [io] - JSON, TOML and YAML definition files
//  4. [render] - Output formats and the Graphviz node-link renderer
//  5. [pipeline] - Orchestration (build → DOT → render) with caching
//  6. [cache] - File, Redis and MongoDB artifact caches
//
// # Architecture
//
//	Built-in topology or definition file
//	         ↓
//	    [diagram] (validated graph)
//	         ↓
//	    [render/nodelink] (deterministic DOT source)
//	         ↓
//	    [cache] lookup by DOT hash
//	         ↓
//	    PNG/SVG/JPG/PDF/DOT/JSON output
//
// # Quick Start
//
//	d, _ := topology.Build("hld")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, _ := runner.Render(ctx, d, pipeline.Options{Formats: []string{"svg"}})
//	paths, _ := pipeline.WriteArtifacts("out", d, result)
//
// # Supporting Packages
//
// [errors] - Coded errors shared by the CLI and the preview server.
//
// [observability] - Hooks for build, render, cache and HTTP events.
//
// [buildinfo] - Version information stamped at build time.
package pkg
