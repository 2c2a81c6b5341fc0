// Package report writes simulation and experiment output as CSV and Parquet.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/experiment"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

var runsHeader = []string{
	"run", "seed", "stop", "customers", "completed", "balked", "clock",
	"mean_waiting_time", "p90_waiting_time", "mean_service_time", "mean_time_in_system",
	"mean_customers_upon_arrival", "mean_queue_length", "mean_interarrival",
}

// WriteRunsCSV writes one row per run of the report.
func WriteRunsCSV(w io.Writer, r *experiment.Report) error {
	rows := make([][]string, 0, len(r.Runs))
	for _, run := range r.Runs {
		rows = append(rows, []string{
			strconv.Itoa(run.Index),
			strconv.FormatInt(run.Seed, 10),
			string(run.Stop),
			strconv.Itoa(run.Customers),
			strconv.Itoa(run.Completed),
			strconv.Itoa(run.Balked),
			formatFloat(run.Clock),
			formatFloat(run.MeanWaitingTime),
			formatFloat(run.P90WaitingTime),
			formatFloat(run.MeanServiceTime),
			formatFloat(run.MeanTimeInSystem),
			formatFloat(run.MeanCustomersUponArrival),
			formatFloat(run.MeanQueueLength),
			formatFloat(run.MeanInterarrival),
		})
	}
	return writeAll(w, runsHeader, rows)
}

var sweepHeader = []string{
	"id", "iterations", "technique", "servers",
	"waiting_time_mean", "waiting_time_std",
	"serving_time_mean", "serving_time_std",
	"time_in_system_mean", "time_in_system_std",
	"queue_length_mean", "queue_length_std",
	"customers_upon_arrival_mean", "customers_upon_arrival_std",
	"computation_time",
}

// WriteSweepCSV writes one row per experiment, in the order given.
func WriteSweepCSV(w io.Writer, reports []*experiment.Report) error {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.ID,
			strconv.Itoa(r.Config.Iterations),
			string(r.Config.Technique),
			strconv.Itoa(r.Config.Servers),
			formatFloat(r.WaitingTime.Mean), formatFloat(r.WaitingTime.StdDev),
			formatFloat(r.ServiceTime.Mean), formatFloat(r.ServiceTime.StdDev),
			formatFloat(r.TimeInSystem.Mean), formatFloat(r.TimeInSystem.StdDev),
			formatFloat(r.QueueLength.Mean), formatFloat(r.QueueLength.StdDev),
			formatFloat(r.CustomersUponArrival.Mean), formatFloat(r.CustomersUponArrival.StdDev),
			formatFloat(r.Elapsed.Seconds()),
		})
	}
	return writeAll(w, sweepHeader, rows)
}

var stepsHeader = []string{"step", "clock", "event", "arrivals", "queue_length", "served", "idle_servers"}

// WriteStepsCSV writes the per-event system state of one run.
func WriteStepsCSV(w io.Writer, steps []sim.StepSnapshot) error {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Clock),
			s.Event.String(),
			strconv.Itoa(s.Arrivals),
			strconv.Itoa(s.QueueLength),
			strconv.Itoa(s.Served),
			strconv.Itoa(s.IdleServers),
		})
	}
	return writeAll(w, stepsHeader, rows)
}
