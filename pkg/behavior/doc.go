// Package behavior provides the pipeline behaviors shipped with courier:
// panic recovery, structured logging, Prometheus metrics, per-key locking and
// request validation.
//
// Register them on a mediator.Registry in the order they should wrap the
// handler; the first registered runs outermost:
//
//	reg.AddPipeline(behavior.Recovery())
//	reg.AddPipeline(behavior.Logging(logger))
//	mediator.AddBehavior[CreateSchool, result.Result[domain.School]](reg,
//		behavior.Validation[CreateSchool, domain.School](validateCreate))
package behavior
