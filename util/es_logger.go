package util

import (
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
)

// TraceLogger routes the elastic client's info/trace logs to logrus at
// debug level.
type TraceLogger struct {
	log.Logger
}

func (logger TraceLogger) Printf(format string, vars ...interface{}) {
	cleanSensitiveData(&vars)
	log.Debugln("[ElasticSearch: Trace] => ", fmt.Sprintf(format, vars...))
}

// ErrorLogger routes the elastic client's error logs to logrus at error
// level.
type ErrorLogger struct {
	log.Logger
}

func (logger ErrorLogger) Printf(format string, vars ...interface{}) {
	cleanSensitiveData(&vars)
	log.Errorln("[ElasticSearch: Error] => ", fmt.Sprintf(format, vars...))
}

// cleanSensitiveData cleans credentials from the
// variables, if any.
func cleanSensitiveData(vars *[]interface{}) {
	// Check if any var contains an URL, if it does, replace auth from the URL
	for index, passedVar := range *vars {
		stringedVar, ok := passedVar.(string)
		if !ok {
			continue
		}

		isURL, _ := regexp.MatchString(`^https?://(www.)?.+\..+$`, stringedVar)
		if !isURL {
			continue
		}

		cleanerRe := regexp.MustCompile(`\/\/(?P<username>.+):.+@`)
		cleanedVar := cleanerRe.ReplaceAllString(stringedVar, "//${username}:***@")

		(*vars)[index] = cleanedVar
	}
}
