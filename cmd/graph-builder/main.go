package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natevvv/indoor-routing/internal/pbf"
	"github.com/natevvv/indoor-routing/pkg/graph"
	"github.com/natevvv/indoor-routing/pkg/venue"
	"go.uber.org/zap"
)

func main() {
	input := flag.String("f", "building.osm.pbf", "OSM file with indoor tagging (.osm.pbf, .osm or .xml)")
	output := flag.String("o", "venue.json", "Output venue file")
	network := flag.String("geojson", "", "Write the walkable network as GeoJSON to this file")
	fmiFile := flag.String("fmi", "", "Write the graph in fmi format to this file")
	scaling := flag.String("scaling", "additive", "Weight scaling of the venue (additive or multiplicative)")
	elevatorWeight := flag.Float64("elevator-weight", pbf.DefaultOptions().ElevatorWeight, "Weight of an elevator ride between two levels")
	stairsWeight := flag.Float64("stairs-weight", pbf.DefaultOptions().StairsWeight, "Weight of a staircase")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if _, ok := graph.ParseWeightScaling(*scaling); !ok {
		logger.Fatal("unknown weight scaling", zap.String("scaling", *scaling))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	importer := pbf.NewImporter(*input, pbf.Options{
		ElevatorWeight: *elevatorWeight,
		StairsWeight:   *stairsWeight,
		Logger:         logger,
	})
	v, err := importer.Import(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	v.Scaling = *scaling
	fmt.Printf("[TIME-Import] = %s\n", time.Since(start))
	fmt.Printf("Nodes: %d, Connections: %d, Targets: %d\n", len(v.Nodes), len(v.Connections), len(v.Targets))

	// building validates the references before anything gets written
	start = time.Now()
	g, resolver, err := v.Build(logger)
	if err != nil {
		logger.Fatal("invalid venue", zap.Error(err))
	}
	fmt.Printf("[TIME-Build] = %s\n", time.Since(start))
	fmt.Printf("Graph: %d nodes, %d arcs, floors %v, %d connections\n", g.NodeCount(), g.ArcCount(), g.GroupKeys(), len(resolver.Descriptors()))

	if err := pbf.ExportVenueJson(v, *output); err != nil {
		logger.Fatal("can't write venue", zap.Error(err))
	}
	fmt.Printf("Exported venue (format %d) to %s\n", venue.FormatVersion, *output)

	if *network != "" {
		if err := pbf.ExportNetworkGeoJson(v, *network); err != nil {
			logger.Fatal("can't write network", zap.Error(err))
		}
		fmt.Printf("Exported network to %s\n", *network)
	}
	if *fmiFile != "" {
		if err := graph.WriteFmi(g, *fmiFile); err != nil {
			logger.Fatal("can't write fmi", zap.Error(err))
		}
		fmt.Printf("Exported graph to %s\n", *fmiFile)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
