package command

import (
	"context"
	"fmt"
)

// export cal <filename>
func (d *Dispatcher) exportCalendar(ctx context.Context, c *cursor) (Result, error) {
	filename, err := c.value("file name")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	cal := d.registry.Active()
	path, err := d.files.Export(ctx, cal.Name, cal.Store, filename)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Exported %s to %s", cal.Name, path)}, nil
}

// import cal <filename>
func (d *Dispatcher) importCalendar(ctx context.Context, c *cursor) (Result, error) {
	filename, err := c.value("file name")
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	cal := d.registry.Active()
	imported, err := d.files.Import(ctx, cal.Store, filename, d.policy)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Imported %s into %s", plural(len(imported), "event"), cal.Name)}, nil
}

// show dashboard from <date> to <date>
func (d *Dispatcher) showDashboard(ctx context.Context, c *cursor) (Result, error) {
	loc := d.registry.Active().Location()
	if err := c.expect("from"); err != nil {
		return Result{}, err
	}
	from, err := c.date("start date", loc)
	if err != nil {
		return Result{}, err
	}
	if err := c.expect("to"); err != nil {
		return Result{}, err
	}
	to, err := c.date("end date", loc)
	if err != nil {
		return Result{}, err
	}
	if err := c.end(); err != nil {
		return Result{}, err
	}
	summary, err := d.stats.GetStats(ctx, from, to)
	if err != nil {
		return Result{}, err
	}
	return Result{Stats: &summary}, nil
}
