package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/skygazer-labs/orbital"
	"github.com/spf13/viper"
)

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05"
)

var (
	scenario string
	export   bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "pass finder scenario TOML file")
	flag.BoolVar(&export, "export", false, "export the predicted passes as CSV")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	// Load scenario
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}
	// Read scenario
	observer := orbital.ObserverLocation{
		Latitude:  viper.GetFloat64("observer.latitude"),
		Longitude: viper.GetFloat64("observer.longitude"),
		Altitude:  viper.GetFloat64("observer.altitude"),
	}
	epoch, err := time.Parse(dateFormat, viper.GetString("satellite.epoch"))
	if err != nil {
		log.Fatalf("satellite.epoch: %s", err)
	}
	sat := orbital.Satellite{
		ID: viper.GetString("satellite.id"),
		Elements: orbital.OrbitalElements{
			SemiMajorAxis: viper.GetFloat64("satellite.sma"),
			Eccentricity:  viper.GetFloat64("satellite.ecc"),
			Inclination:   orbital.Deg2rad(viper.GetFloat64("satellite.inc")),
			RAAN:          orbital.Deg2rad(viper.GetFloat64("satellite.raan")),
			ArgPeriapsis:  orbital.Deg2rad(viper.GetFloat64("satellite.argperi")),
			MeanAnomaly:   orbital.Deg2rad(viper.GetFloat64("satellite.meananomaly")),
			Epoch:         epoch,
		},
		StdMag:      viper.GetFloat64("satellite.stdmag"),
		StdMagRange: viper.GetFloat64("satellite.stdmagrange"),
	}
	days := viper.GetInt("passes.days")
	if days == 0 {
		days = 1
	}
	minEl := viper.GetFloat64("passes.minelevation")
	if minEl == 0 {
		minEl = orbital.DefaultMinElevation
	}
	from := time.Now()
	if fromStr := viper.GetString("passes.from"); fromStr != "" {
		if from, err = time.Parse(dateFormat, fromStr); err != nil {
			log.Fatalf("passes.from: %s", err)
		}
	}
	log.Printf("[conf] %s over (%.4f, %.4f), %d day(s) from %s", sat.ID, observer.Latitude, observer.Longitude, days, from.Format(dateFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	passes, err := orbital.PredictPasses(ctx, sat, observer, from, days, minEl)
	if err != nil {
		if len(passes) == 0 {
			log.Fatalf("prediction failed: %s", err)
		}
		log.Printf("[warning] prediction interrupted: %s", err)
	}
	if len(passes) == 0 {
		fmt.Printf("no passes of %s above %.0f° in the next %d day(s)\n", sat.ID, minEl, days)
		return
	}
	for no, pass := range passes {
		fmt.Printf("#%d %s\n", no+1, pass)
	}
	if export {
		log.Printf("[info] saved %s", orbital.ExportPasses(sat.ID, passes, true))
	}
}
