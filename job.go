// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/AeonDave/sdes/internal/framing"
	"github.com/AeonDave/sdes/internal/pipeline"
	"github.com/AeonDave/sdes/internal/sdes"
)

// job is the state shared by the steps of one encrypt or decrypt run.
type job struct {
	opts   options
	log    *logrus.Entry
	stdout io.Writer

	cipher  *sdes.Cipher
	codec   *framing.Codec
	written int64
}

func newPipeline(log *logrus.Entry) *pipeline.Pipeline[*job] {
	return pipeline.New[*job](log).Add(
		pipeline.NewFuncStep("schedule", scheduleKeys),
		pipeline.NewFuncStep("banner", printBanner),
		pipeline.NewFuncStep("transform", transformFile),
	)
}

func scheduleKeys(j *job) error {
	c, err := sdes.NewCipher(j.opts.key, j.opts.rounds)
	if err != nil {
		return err
	}
	j.cipher = c
	j.codec = framing.New(c,
		framing.WithWorkers(j.opts.workers),
		framing.WithLogger(j.log),
	)

	if j.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		j.log.WithField("key", sdes.Bits(uint32(j.opts.key), sdes.KeyBits)).Debug("master key")
		for i, k := range j.cipher.Keys() {
			j.log.WithFields(logrus.Fields{
				"round": i + 1,
				"key":   sdes.Bits(uint32(k), 8),
			}).Debug("round key")
		}
	}
	return nil
}

func printBanner(j *job) error {
	title, verb := "Decryptor", "Decrypting"
	if j.opts.command == "encrypt" {
		title, verb = "Encryptor", "Encrypting"
	}
	fmt.Fprintf(j.stdout, "Simplified DES %s\n", title)
	fmt.Fprintf(j.stdout, "\tOutput File: %s\n", j.opts.output)
	fmt.Fprintf(j.stdout, "\tKey: %s\n", j.opts.key)
	fmt.Fprintf(j.stdout, "\tNumber of rounds: %d\n", j.opts.rounds)
	fmt.Fprintf(j.stdout, "\n%s file: %s ...\n", verb, j.opts.input)
	return nil
}

func transformFile(j *job) error {
	var err error
	switch j.opts.command {
	case "encrypt":
		j.written, err = j.codec.EncryptFile(j.opts.output, j.opts.input)
	default:
		j.written, err = j.codec.DecryptFile(j.opts.output, j.opts.input)
	}
	if err != nil {
		return err
	}
	j.log.WithField("bytes", j.written).Debugf("wrote %s", j.opts.output)
	return nil
}
