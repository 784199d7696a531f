package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	p "github.com/natevvv/indoor-routing/pkg/graph/path"
	"github.com/natevvv/indoor-routing/pkg/slice"
	"github.com/natevvv/indoor-routing/pkg/venue"
	"go.uber.org/zap"
)

// target is a benchmark query with the reference result
type target struct {
	origin, destination string
	cost                float64 // -1 if unreachable
	hops                int
}

func main() {
	venueFile := flag.String("venue", "venue.json", "Venue to benchmark")
	useRandomTargets := flag.Bool("random", false, "Create (new) random targets")
	amountTargets := flag.Int("n", 100, "How many new targets should get created")
	storeTargets := flag.Bool("store", false, "Store targets (when newly generated)")
	targetFile := flag.String("targets", "targets.txt", "File with the stored targets")
	seed := flag.Int64("seed", 0, "Seed for the random targets, 0 uses the current time")
	algorithm := flag.String("search", "astar", "Select the search algorithm (astar, dijkstra or plain-dijkstra)")
	accessible := flag.Bool("accessible", false, "Only use accessible connections")
	cpuProfile := flag.String("cpu", "", "write cpu profile to file")
	flag.Parse()

	start := time.Now()
	v, err := venue.Load(*venueFile)
	if err != nil {
		log.Fatal(err)
	}
	g, resolver, err := v.Build(zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("[TIME-Import] = %s\n", time.Since(start))

	navigator, err := p.NewNavigator(*algorithm, g, nil)
	if err != nil {
		log.Fatal(err)
	}
	reference, err := p.NewNavigator("plain-dijkstra", g, nil)
	if err != nil {
		log.Fatal(err)
	}
	query := func(origin, destination string) p.Query {
		return p.Query{
			Origins:        []string{origin},
			Destinations:   []string{destination},
			AccessibleOnly: *accessible,
			Connections:    resolver,
		}
	}

	var targets []target
	if *useRandomTargets {
		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		targets = createTargets(*amountTargets, rand.New(rand.NewSource(*seed)), reference, query)
		if *storeTargets {
			writeTargets(targets, *targetFile)
		}
	} else {
		targets = readTargets(*targetFile)
		if *amountTargets < len(targets) {
			targets = targets[0:*amountTargets]
		}
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	benchmark(navigator, reference, targets, query)
}

func readTargets(filename string) []target {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	targets := make([]target, 0)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}
		var t target
		if _, err := fmt.Sscanf(line, "%s %s %g %d", &t.origin, &t.destination, &t.cost, &t.hops); err != nil {
			log.Fatalf("invalid target line %q: %v", line, err)
		}
		targets = append(targets, t)
	}
	return targets
}

func createTargets(n int, rng *rand.Rand, reference p.Navigator, query func(origin, destination string) p.Query) []target {
	g := reference.GetGraph()
	targets := make([]target, n)
	for i := 0; i < n; i++ {
		origin := g.GetNode(rng.Intn(g.NodeCount())).Id
		destination := g.GetNode(rng.Intn(g.NodeCount())).Id
		result, err := reference.ShortestPath(query(origin, destination))
		if err != nil {
			log.Fatal(err)
		}
		targets[i] = target{origin: origin, destination: destination, cost: -1}
		if result.Found {
			targets[i].cost = result.Cost
			targets[i].hops = len(result.Nodes())
		}
	}
	return targets
}

func writeTargets(targets []target, targetFile string) {
	var sb strings.Builder
	sb.WriteString("# origin destination cost hops\n")
	for _, t := range targets {
		sb.WriteString(fmt.Sprintf("%v %v %v %v\n", t.origin, t.destination, t.cost, t.hops))
	}

	file, cErr := os.Create(targetFile)
	if cErr != nil {
		log.Fatal(cErr)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writer.WriteString(sb.String())
	writer.Flush()
}

// Run benchmarks on the provided graph and targets
func benchmark(navigator, reference p.Navigator, targets []target, query func(origin, destination string) p.Query) {
	var runtime time.Duration = 0
	completed := 0
	var kpis p.KPIs

	invalidCosts := make([]int, 0)
	invalidResults := make([]int, 0)
	differentPaths := make([][2]int, 0) // case, differing nodes
	covered := slice.MakeFixedSizeSlice(navigator.GetGraph().NodeCount())

	showResults := func() {
		if completed == 0 {
			fmt.Println("No queries completed")
			return
		}
		fmt.Printf("Average runtime: %.3fms\n", float64(runtime.Nanoseconds())/float64(completed)/1000000)
		fmt.Printf("Average pq pops: %d\n", kpis.PqPops/completed)
		fmt.Printf("Average pq updates: %d\n", kpis.PqUpdates/completed)
		fmt.Printf("Average settled nodes: %d\n", kpis.SettledNodes/completed)
		fmt.Printf("Average reopened nodes: %d\n", kpis.ReopenedNodes/completed)
		fmt.Printf("Average relaxations attempts: %d\n", kpis.RelaxationAttempts/completed)
		fmt.Printf("Average edge relaxations: %d\n", kpis.RelaxedEdges/completed)
		fmt.Printf("Nodes on any path: %.1f%%\n", covered.Ratio()*100)

		fmt.Printf("%v/%v invalid Result (source/target).\n", len(invalidResults), completed)
		for i, result := range invalidResults {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid result\n", i, result, targets[result].origin, targets[result].destination)
		}

		fmt.Printf("%v/%v invalid path costs.\n", len(invalidCosts), completed)
		for i, testcase := range invalidCosts {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid cost. Reference: %v\n", i, testcase, targets[testcase].origin, targets[testcase].destination, targets[testcase].cost)
		}

		// equal cost paths may differ, these are no errors
		fmt.Printf("%v/%v paths differ from the reference.\n", len(differentPaths), completed)
		for i, d := range differentPaths {
			fmt.Printf("%v: Case %v (%v -> %v) differs in %v nodes\n", i, d[0], targets[d[0]].origin, targets[d[0]].destination, d[1])
		}
	}

	// catch interrupt to still show already calculated results
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		showResults()
		os.Exit(0)
	}()

	for i, t := range targets {
		start := time.Now()
		result, err := navigator.ShortestPath(query(t.origin, t.destination))
		elapsed := time.Since(start)
		if err != nil {
			log.Fatalf("Case %v (%v -> %v): %v", i, t.origin, t.destination, err)
		}

		kpis.PqPops += result.KPIs.PqPops
		kpis.PqUpdates += result.KPIs.PqUpdates
		kpis.SettledNodes += result.KPIs.SettledNodes
		kpis.ReopenedNodes += result.KPIs.ReopenedNodes
		kpis.RelaxationAttempts += result.KPIs.RelaxationAttempts
		kpis.RelaxedEdges += result.KPIs.RelaxedEdges

		fmt.Printf("[%3v TIME-Navigate, PQ Pops, PQ Updates, settled Nodes, relaxed Edges] = %12s, %7d, %7d, %7d, %7d\n", i, elapsed, result.KPIs.PqPops, result.KPIs.PqUpdates, result.KPIs.SettledNodes, result.KPIs.RelaxedEdges)

		cost := -1.0
		if result.Found {
			cost = result.Cost
			nodes := result.Nodes()
			covered.Add(nodes...)
			g := navigator.GetGraph()
			if g.GetNode(nodes[0]).Id != t.origin || g.GetNode(nodes[len(nodes)-1]).Id != t.destination {
				invalidResults = append(invalidResults, i)
			}
			if ref, err := reference.ShortestPath(query(t.origin, t.destination)); err == nil && ref.Found {
				if differences := slice.Compare(nodes, ref.Nodes()); differences != 0 {
					differentPaths = append(differentPaths, [2]int{i, differences})
				}
			}
		}
		if !sameCost(cost, t.cost) {
			invalidCosts = append(invalidCosts, i)
		}

		runtime += elapsed
		completed++
	}
	// normal termination, show results
	showResults()
}

func sameCost(a, b float64) bool {
	if a < 0 || b < 0 {
		return a < 0 && b < 0
	}
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Abs(b))
}
