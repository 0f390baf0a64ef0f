package convert

import "context"

// jobBuffer holds every value a conversion can emit so the producer never
// waits on a slow consumer.
const jobBuffer = 4

// Job is a conversion running on its own goroutine.
type Job struct {
	sink   *ChannelSink
	done   chan struct{}
	result Result
	err    error
}

// Start runs req on a new goroutine. Progress values arrive on Progress in
// emission order; the channel closes after the terminal value.
func Start(ctx context.Context, p *Pipeline, req Request) *Job {
	job := &Job{
		sink: NewChannelSink(jobBuffer),
		done: make(chan struct{}),
	}
	go func() {
		defer close(job.done)
		defer job.sink.Close()
		job.result, job.err = p.Convert(ctx, req, job.sink)
	}()
	return job
}

// Progress returns the channel of progress values.
func (j *Job) Progress() <-chan float64 {
	return j.sink.Values()
}

// Detach stops delivery of further progress values. The conversion keeps
// running.
func (j *Job) Detach() {
	j.sink.Detach()
}

// Done is closed once the conversion has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the conversion finishes and returns its outcome.
func (j *Job) Wait() (Result, error) {
	<-j.done
	return j.result, j.err
}
