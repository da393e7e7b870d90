// Copyright 2026 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of COQPIPE.
//
//  COQPIPE is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  COQPIPE is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with COQPIPE.  If not, see <https://www.gnu.org/licenses/>.

package rdb

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	dfltRedisPort = 6379
)

type Conf struct {
	Host                string `json:"host"`
	Port                int    `json:"port"`
	DB                  int    `json:"db"`
	Password            string `json:"password"`
	ChannelQuery        string `json:"channelQuery"`
	ChannelResultPrefix string `json:"channelResultPrefix"`
	QueueKey            string `json:"queueKey"`

	// ResultTTLSecs specifies how long a job result stays
	// in Redis after it was published
	ResultTTLSecs int `json:"resultTtlSecs"`
}

func (conf *Conf) ResultTTL() time.Duration {
	if conf.ResultTTLSecs > 0 {
		return time.Duration(conf.ResultTTLSecs) * time.Second
	}
	return DefaultResultExpiration
}

func (conf *Conf) Addr() string {
	return fmt.Sprintf("%s:%d", conf.Host, conf.Port)
}

func setDefault(value *string, dflt, confKey string) {
	if *value == "" {
		*value = dflt
		log.Warn().
			Str("key", confKey).
			Str("value", dflt).
			Msg("Redis configuration item not specified, using default")
	}
}

func (conf *Conf) ValidateAndDefaults(confContext string) error {
	if conf == nil {
		return fmt.Errorf("missing configuration section `%s`", confContext)
	}
	if conf.Host == "" {
		return fmt.Errorf("missing `%s.host`", confContext)
	}
	if conf.Port == 0 {
		conf.Port = dfltRedisPort
	}
	if conf.ResultTTLSecs < 0 {
		return fmt.Errorf("invalid `%s.resultTtlSecs`", confContext)
	}
	setDefault(&conf.ChannelQuery, DefaultQueryChannel, confContext+".channelQuery")
	setDefault(&conf.ChannelResultPrefix, DefaultResultChannelPrefix, confContext+".channelResultPrefix")
	setDefault(&conf.QueueKey, DefaultQueueKey, confContext+".queueKey")
	return nil
}
