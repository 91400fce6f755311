package bsp

import (
	"sync"
	"sync/atomic"

	"github.com/Ahmed-Sermani/go-pagerank/bsp/message"
	"golang.org/x/xerrors"
)

// ComputeFunc is a function that a graph instance invokes on each vertex when
// executing a superstep.
type ComputeFunc[VT, ET any] func(g *Graph[VT, ET], v *Vertex[VT, ET], msgIt message.Iterator) error

// Vertex is a node of the graph carrying a value of type VT and its outgoing
// edges.
type Vertex[VT, ET any] struct {
	id     string
	value  VT
	active bool

	// The queue at index superstep%2 holds the messages for the current
	// superstep while the queue at index (superstep+1)%2 buffers the
	// messages for the next one.
	msgQueue [2]message.Queue
	edges    []*Edge[ET]
}

func (v *Vertex[VT, ET]) ID() string { return v.id }

func (v *Vertex[VT, ET]) Edges() []*Edge[ET] { return v.edges }

// Freeze marks the vertex as inactive. Inactive vertices will not be processed
// in the following supersteps unless they receive a message in which case they
// will be re-activated.
func (v *Vertex[VT, ET]) Freeze() { v.active = false }

func (v *Vertex[VT, ET]) Value() VT { return v.value }

func (v *Vertex[VT, ET]) SetValue(val VT) { v.value = val }

// Edge is a directed edge owned by its source vertex.
type Edge[ET any] struct {
	value ET
	dstID string
}

func (e *Edge[ET]) DstID() string { return e.dstID }

func (e *Edge[ET]) Value() ET { return e.value }

func (e *Edge[ET]) SetValue(val ET) { e.value = val }

// Graph implements a parallel graph processor based on the concepts described
// in the Pregel paper https://15799.courses.cs.cmu.edu/fall2013/static/papers/p135-malewicz.pdf .
type Graph[VT, ET any] struct {
	superstep    int
	vertices     map[string]*Vertex[VT, ET]
	queueFactory message.QueueFactory
	aggregators  map[string]Aggregator
	computeFunc  ComputeFunc[VT, ET]

	wg sync.WaitGroup

	// vertexCh is polled by the compute workers to obtain the next vertex
	// to process.
	vertexCh chan *Vertex[VT, ET]

	// errCh holds at most one error. Workers drop any error raised while
	// another one is still pending.
	errCh chan error

	// stepCompletedCh is signalled by the worker that processes the last
	// vertex of a superstep.
	stepCompletedCh chan struct{}

	// activeInStep counts the vertices processed in the current superstep
	// and pendingInStep the vertices still waiting to be processed.
	activeInStep  int64
	pendingInStep int64
}

// NewGraph creates a new Graph instance using the specified configuration. It
// is important for callers to invoke Close() on the returned graph instance
// when they are done using it.
func NewGraph[VT, ET any](cfg GraphConfig[VT, ET]) (*Graph[VT, ET], error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("graph config validation failed: %w", err)
	}

	g := &Graph[VT, ET]{
		computeFunc:  cfg.ComputeFn,
		queueFactory: cfg.QueueFactory,
		aggregators:  make(map[string]Aggregator),
		vertices:     make(map[string]*Vertex[VT, ET]),
	}
	g.startWorkers(cfg.ComputeWorkers)

	return g, nil
}

// Close stops the compute workers and releases any resources associated with
// the graph.
func (g *Graph[VT, ET]) Close() error {
	close(g.vertexCh)
	g.wg.Wait()

	return g.Reset()
}

// Reset the state of the graph by removing any existing vertices or
// aggregators and resetting the superstep counter.
func (g *Graph[VT, ET]) Reset() error {
	g.superstep = 0
	for _, v := range g.vertices {
		for i, q := range v.msgQueue {
			if err := q.Close(); err != nil {
				return xerrors.Errorf("closing message queue #%d for vertex %v: %w", i, v.ID(), err)
			}
		}
	}
	g.vertices = make(map[string]*Vertex[VT, ET])
	g.aggregators = make(map[string]Aggregator)
	return nil
}

// AddVertex inserts a new vertex with the specified id and initial value into
// the graph. If the vertex already exists, AddVertex will just overwrite its
// value with the provided initValue.
func (g *Graph[VT, ET]) AddVertex(id string, initValue VT) {
	v := g.vertices[id]
	if v == nil {
		v = &Vertex[VT, ET]{
			id: id,
			msgQueue: [2]message.Queue{
				g.queueFactory(),
				g.queueFactory(),
			},
			active: true,
		}
		g.vertices[id] = v
	}
	v.SetValue(initValue)
}

// AddEdge inserts a directed edge from src to destination and annotates it
// with the specified initValue. Edges are owned by their source so srcID must
// resolve to a vertex of the graph.
func (g *Graph[VT, ET]) AddEdge(srcID, dstID string, initValue ET) error {
	srcVertex := g.vertices[srcID]
	if srcVertex == nil {
		return xerrors.Errorf("create edge from %q to %q: %w", srcID, dstID, ErrUnknownEdgeSource)
	}

	srcVertex.edges = append(srcVertex.edges, &Edge[ET]{
		dstID: dstID,
		value: initValue,
	})
	return nil
}

// RegisterAggregator adds an aggregator with the specified name into the
// graph.
func (g *Graph[VT, ET]) RegisterAggregator(name string, aggregator Aggregator) {
	g.aggregators[name] = aggregator
}

// Aggregator returns the aggregator with the specified name or nil if the
// aggregator does not exist.
func (g *Graph[VT, ET]) Aggregator(name string) Aggregator {
	return g.aggregators[name]
}

func (g *Graph[VT, ET]) Aggregators() map[string]Aggregator { return g.aggregators }

func (g *Graph[VT, ET]) Superstep() int { return g.superstep }

func (g *Graph[VT, ET]) Vertices() map[string]*Vertex[VT, ET] { return g.vertices }

// BroadcastToNeighbors sends msg to every vertex that v has an edge to.
// Neighbors receive the message in the next superstep.
func (g *Graph[VT, ET]) BroadcastToNeighbors(v *Vertex[VT, ET], msg message.Message) error {
	for _, e := range v.edges {
		if err := g.SendMessage(e.DstID(), msg); err != nil {
			return err
		}
	}
	return nil
}

// SendMessage queues msg for delivery to the vertex with the specified
// destination ID. The recipient processes it in the next superstep.
func (g *Graph[VT, ET]) SendMessage(dst string, msg message.Message) error {
	dstVertex := g.vertices[dst]
	if dstVertex == nil {
		return xerrors.Errorf("can't deliver message to %q: %w", dst, ErrInvalidMessageDestination)
	}
	return dstVertex.msgQueue[(g.superstep+1)%2].Enqueue(msg)
}

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (g *Graph[VT, ET]) startWorkers(numWorkers int) {
	g.vertexCh = make(chan *Vertex[VT, ET])
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// stepWorker consumes vertexCh for incoming vertices and executes the configured
// ComputeFunc for each one. The worker exits when vertexCh gets
// closed.
func (g *Graph[VT, ET]) stepWorker() {
	defer g.wg.Done()
	for v := range g.vertexCh {
		buffer := v.msgQueue[g.superstep%2]
		if v.active || buffer.PendingMessages() {
			atomic.AddInt64(&g.activeInStep, 1)
			v.active = true

			if err := g.computeFunc(g, v, buffer.Messages()); err != nil {
				emitError(g.errCh, xerrors.Errorf("error while running compute function for vertex %q: %w", v.ID(), err))
			} else if err := buffer.DiscardMessages(); err != nil {
				emitError(g.errCh, xerrors.Errorf("failed discarding unprocessed messages for vertex %q: %w", v.ID(), err))
			}
		}
		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
}

// step executes the next superstep and returns back the number of vertices
// that were processed either because they were still active or because they
// received a message.
func (g *Graph[VT, ET]) step() (int, error) {
	g.activeInStep = 0
	g.pendingInStep = int64(len(g.vertices))

	if g.pendingInStep == 0 {
		return 0, nil
	}

	for _, v := range g.vertices {
		g.vertexCh <- v
	}

	// Block until the worker pool has processed every vertex.
	<-g.stepCompletedCh

	var err error
	select {
	case err = <-g.errCh:
	default:
	}

	return int(g.activeInStep), err
}

func emitError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default: // the channel already contains an error
	}
}
