package cmd

import (
	"log/slog"

	"github.com/ardnew/rnprof/capture"
	"github.com/ardnew/rnprof/device"
	"github.com/ardnew/rnprof/log"
	"github.com/ardnew/rnprof/pkg"
)

// Device holds the flags that locate an application's profiles.
type Device struct {
	Package string `help:"Android package name."                                    short:"p"`
	Serial  string `help:"Serial number of the target device."   env:"ANDROID_SERIAL" short:"s"`
	ADB     string `help:"Device bridge command line."           default:"${adb}"  name:"adb"`
	Filter  string `help:"Expression over Date, Time, FileName and DevicePath selecting profiles." placeholder:"EXPR"`
}

func (d *Device) bridge(logger log.Logger) (*device.Bridge, error) {
	b, err := device.New(d.ADB,
		device.WithSerial(d.Serial),
		device.WithLogger(logger),
	)
	if err != nil {
		return nil, pkg.ErrConfig.Wrap(err)
	}

	return b, nil
}

func (d *Device) filter() (*capture.Filter, error) {
	f, err := capture.CompileFilter(d.Filter)
	if err != nil {
		return nil, pkg.ErrConfig.Wrap(err)
	}

	return f, nil
}

func (d *Device) logger() log.Logger {
	return log.With(slog.String("package", d.Package))
}
