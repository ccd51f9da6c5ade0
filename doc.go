// Package parallel provides a bounded worker pool with index-aligned batch
// results, and an iterative-parallelism façade built on top of it.
//
// # Worker pool
//
// A WorkerPool owns a fixed number of worker goroutines that share one FIFO
// task queue. RunBatch submits an ordered group of computations, blocks until
// all of them finish and returns their results in input order, however the
// workers interleave:
//
//	pool, err := parallel.NewWorkerPool("mapper", 4)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	results, err := pool.RunBatch(ctx, []parallel.BatchFunc{
//		func(ctx context.Context) (any, error) { return 1, nil },
//		func(ctx context.Context) (any, error) { return 2, nil },
//	})
//
// A failing or panicking computation does not hang the batch: the call
// returns a *TaskError naming the lowest failing index. Cancelling ctx
// returns ErrInterrupted. Close is idempotent, does not wait for the queue to
// drain, and aborts outstanding batches with ErrPoolClosed.
//
// # Iterative parallelism
//
// IterativeParallelism splits a slice into at most threads contiguous
// blocks, computes each block on a pool and reduces the block results in
// block order. Join, Filter, Map, Maximum, Minimum, All, Any and Count are
// all built on PartitionComputeReduce:
//
//	ip := parallel.NewIterativeParallelism() // fresh pool per call
//	doubled, err := parallel.Map(ctx, ip, 3, values, func(v int) int { return v * 2 })
//
// Use NewSharedIterativeParallelism to run every call on a pool you own
// instead; the façade never closes a borrowed pool.
//
// # Global pool
//
//	parallel.InitGlobalWorkerPool(runtime.NumCPU())
//	defer parallel.ShutdownGlobalWorkerPool()
//
//	ip := parallel.CreateIterativeParallelism()
package parallel
