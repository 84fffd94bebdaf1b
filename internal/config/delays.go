package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Delays are presentation timings in milliseconds.
type Delays struct {
	QueueDelay     uint32 `yaml:"queueDelay"`
	CardPlay       uint32 `yaml:"cardPlay"`
	PileDiscard    uint32 `yaml:"pileDiscard"`
	FoulCollect    uint32 `yaml:"foulCollect"`
	EndGameToLobby uint32 `yaml:"endGameToLobby"`
}

func DefaultDelays() Delays {
	return Delays{
		QueueDelay:     50,
		CardPlay:       300,
		PileDiscard:    500,
		FoulCollect:    500,
		EndGameToLobby: 2000,
	}
}

// NoDelays is used when DISABLE_DELAYS is set and by tests.
func NoDelays() Delays {
	return Delays{}
}

func ParseDelayConfig(delaysFile string) (Delays, error) {
	bytes, err := ioutil.ReadFile(delaysFile)
	if err != nil {
		return Delays{}, errors.Wrap(err, fmt.Sprintf("Error reading delay config file [%s]", delaysFile))
	}

	data := DefaultDelays()
	err = yaml.Unmarshal(bytes, &data)
	if err != nil {
		return Delays{}, errors.Wrap(err, fmt.Sprintf("Error parsing delays YAML file [%s]", delaysFile))
	}

	return data, nil
}

func ms(v uint32) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (d Delays) QueueDelayDuration() time.Duration     { return ms(d.QueueDelay) }
func (d Delays) CardPlayDuration() time.Duration       { return ms(d.CardPlay) }
func (d Delays) PileDiscardDuration() time.Duration    { return ms(d.PileDiscard) }
func (d Delays) FoulCollectDuration() time.Duration    { return ms(d.FoulCollect) }
func (d Delays) EndGameToLobbyDuration() time.Duration { return ms(d.EndGameToLobby) }
