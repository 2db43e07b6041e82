package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/linqiyu/coffeesim/internal/oracle"
	"github.com/linqiyu/coffeesim/internal/repositories/postgres"
	"github.com/linqiyu/coffeesim/internal/simulator/producers"
	"github.com/lucsky/cuid"
	"github.com/schollz/progressbar/v3"
)

// State tracks the simulation lifecycle.
type State int

const (
	Uninitialized State = iota
	PopulationLoaded
	ShopsInstantiated
	Running
	Completed
)

// EventStream receives per-decision messages while the run progresses.
type EventStream interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// Simulator owns the whole run: population, shop instances, the oracle
// client, the append-only log. Shops are read-only while Running.
type Simulator struct {
	Config *models.Config
	Rules  models.PlatformRules
	Oracle oracle.Decider
	Rng    *rand.Rand

	Customers []*models.CustomerProfile
	Shops     []*models.ShopInstance

	state  State
	runID  string
	rows   []models.SimulationRow
	stream EventStream
}

func NewSimulator(cfg *models.Config) *Simulator {
	return &Simulator{
		Config: cfg,
		Rng:    rand.New(rand.NewSource(cfg.Seed)),
		runID:  cuid.New(),
		state:  Uninitialized,
	}
}

// Run executes the full lifecycle and returns the per-decision tally.
// Initialization failures are fatal; per-customer failures are not.
func (s *Simulator) Run() (models.DecisionTally, error) {
	if err := s.initialize(); err != nil {
		return nil, err
	}

	sample, err := s.drawSample()
	if err != nil {
		return nil, err
	}

	s.state = Running
	log.Printf("simulating %d customers over %d shops (strategy: %s)", len(sample), len(s.Shops), s.Config.Strategy)
	s.rows = s.processCustomers(sample)
	s.state = Completed

	if s.stream != nil {
		if err := s.stream.Close(); err != nil {
			log.Printf("closing event stream: %v", err)
		}
	}

	if err := s.export(); err != nil {
		return nil, err
	}
	if s.Config.Database.Enabled {
		if err := s.persistResults(); err != nil {
			// partial results are already on disk; a sink failure is not fatal
			log.Printf("persisting results to postgres: %v", err)
		}
	}

	tally := models.TallyDecisions(s.rows)
	for decision, count := range tally {
		log.Printf("  %s: %d", decision, count)
	}
	return tally, nil
}

// Rows exposes the finished log, ordered by processing sequence.
func (s *Simulator) Rows() []models.SimulationRow {
	return s.rows
}

func (s *Simulator) initialize() error {
	rules, err := models.StrategyRules(s.Config.Strategy)
	if err != nil {
		return err
	}
	s.Rules = rules

	customers, err := models.LoadPopulation(s.Config.PopulationFile)
	if err != nil {
		return fmt.Errorf("loading population: %w", err)
	}
	// locations come from the run's seeded source so runs are reproducible
	span := s.Config.MapMax - s.Config.MapMin + 1
	if span < 1 {
		span = 1
	}
	for _, c := range customers {
		c.Location = models.Point{
			X: s.Config.MapMin + s.Rng.Intn(span),
			Y: s.Config.MapMin + s.Rng.Intn(span),
		}
	}
	s.Customers = customers
	s.state = PopulationLoaded
	log.Printf("loaded %d customer profiles from %s", len(customers), s.Config.PopulationFile)

	library, err := models.LoadBrandLibrary(s.Config.BrandLibraryFile)
	if err != nil {
		return fmt.Errorf("loading brand library: %w", err)
	}
	s.Shops = InstantiateShops(library, s.Config.MapOverlay)
	s.state = ShopsInstantiated
	log.Printf("instantiated %d shops on the map", len(s.Shops))

	if s.Config.Oracle.Mock {
		s.Oracle = oracle.MockDecider{}
		log.Printf("using offline mock oracle")
	} else if s.Oracle == nil {
		client, err := oracle.NewClient(s.Config.Oracle)
		if err != nil {
			return err
		}
		s.Oracle = client
	}

	if s.Config.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(s.Config)
		if err != nil {
			return fmt.Errorf("creating Kafka producer: %w", err)
		}
		s.stream = producer
	}
	return nil
}

// InstantiateShops merges the brand library with the map overlay. Overlay
// entries referencing an unknown brand are skipped with a warning; they are
// not fatal.
func InstantiateShops(library models.BrandLibrary, overlay []models.ShopSetup) []*models.ShopInstance {
	shops := make([]*models.ShopInstance, 0, len(overlay))
	for _, setup := range overlay {
		brand, ok := library[setup.BrandID]
		if !ok {
			log.Printf("warning: brand %s not found in library, skipping shop %s", setup.BrandID, setup.ID)
			continue
		}
		shops = append(shops, &models.ShopInstance{
			ID:               setup.ID,
			BrandID:          setup.BrandID,
			BrandName:        brand.Name,
			Category:         brand.Category,
			BusinessModel:    brand.BusinessModel,
			Promotions:       brand.Promotions,
			Menu:             brand.Menu,
			SupportsDelivery: brand.SupportsDelivery,
			Location:         models.Point{X: setup.X, Y: setup.Y},
			QueueTime:        setup.CurrentQueue,
		})
	}
	return shops
}

func (s *Simulator) drawSample() ([]*models.CustomerProfile, error) {
	n, err := s.Config.SampleCount()
	if err != nil {
		return nil, err
	}
	if n > len(s.Customers) {
		n = len(s.Customers)
	}
	perm := s.Rng.Perm(len(s.Customers))
	sample := make([]*models.CustomerProfile, n)
	for i := 0; i < n; i++ {
		sample[i] = s.Customers[perm[i]]
	}
	return sample, nil
}

type decisionResult struct {
	seq int
	row models.SimulationRow
}

// processCustomers drives the sample through the pipeline on a bounded
// worker pool. The pool size caps concurrent in-flight oracle calls; the
// pacing delay between admissions respects the oracle's external rate limit.
// Rows carry their sequence number so parallel scheduling stays reorderable.
func (s *Simulator) processCustomers(sample []*models.CustomerProfile) []models.SimulationRow {
	workers := s.Config.Workers
	if workers < 1 {
		workers = 1
	}
	pacing := time.Duration(s.Config.PacingMs) * time.Millisecond

	type job struct {
		seq      int
		customer *models.CustomerProfile
	}
	jobs := make(chan job)
	results := make(chan decisionResult, len(sample))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pipeline := &DecisionPipeline{Oracle: s.Oracle, Rules: s.Rules}
			for j := range jobs {
				record := pipeline.Decide(context.Background(), j.customer, s.Shops)
				results <- decisionResult{seq: j.seq, row: models.NewSimulationRow(j.customer, record)}
			}
		}()
	}

	go func() {
		for i, customer := range sample {
			jobs <- job{seq: i, customer: customer}
			if pacing > 0 && i < len(sample)-1 {
				time.Sleep(pacing)
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	bar := progressbar.Default(int64(len(sample)), "simulating")
	rows := make([]models.SimulationRow, 0, len(sample))
	collected := make([]decisionResult, 0, len(sample))
	for res := range results {
		collected = append(collected, res)
		_ = bar.Add(1)
		s.publish(res.row)
	}

	// per-worker completion order is nondeterministic; restore sequence order
	sort.Slice(collected, func(i, j int) bool { return collected[i].seq < collected[j].seq })
	for _, res := range collected {
		rows = append(rows, res.row)
	}
	return rows
}

func (s *Simulator) publish(row models.SimulationRow) {
	if s.stream == nil {
		return
	}
	msg, err := json.Marshal(row)
	if err != nil {
		log.Printf("marshalling decision event: %v", err)
		return
	}
	if err := s.stream.WriteMessage(s.Config.KafkaTopic, msg); err != nil {
		log.Printf("publishing decision event: %v", err)
	}
}

func (s *Simulator) export() error {
	path := s.Config.OutputFile
	if path == "" {
		timestamp := time.Now().Format("20060102_150405")
		ext := s.Config.OutputFormat
		if ext == "" || ext == "console" {
			ext = "csv"
		}
		path = filepath.Join(s.Config.OutputFolder,
			fmt.Sprintf("simulation_results_%s_%s.%s", s.Config.Mode, timestamp, ext))
	}

	exporter, err := NewExporter(s.Config, path)
	if err != nil {
		return err
	}
	if err := exporter.Export(s.rows); err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	log.Printf("results written to %s", path)
	return nil
}

func (s *Simulator) persistResults() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, s.Config.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := postgres.NewResultRepository(pool)
	if err := repo.CreateSchema(ctx); err != nil {
		return err
	}
	if err := repo.BulkCreate(ctx, s.runID, s.rows); err != nil {
		return err
	}

	// read the tally back so a silently lossy sink does not go unnoticed
	persisted, err := repo.CountByDecision(ctx, s.runID)
	if err != nil {
		return err
	}
	total := 0
	for _, count := range persisted {
		total += count
	}
	if total != len(s.rows) {
		return fmt.Errorf("postgres sink mismatch for run %s: wrote %d rows, counted %d", s.runID, len(s.rows), total)
	}
	log.Printf("persisted %d rows to postgres (run %s)", total, s.runID)
	return nil
}
