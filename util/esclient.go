package util

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	v "github.com/hashicorp/go-version"
	es7 "github.com/olivere/elastic/v7"
	log "github.com/sirupsen/logrus"
)

var semanticVersion string

var (
	clientInit sync.Once
	client7    *es7.Client
)

// GetClient7 returns the es7 client
func GetClient7() *es7.Client {
	// initialize the client if not present
	if client7 == nil {
		initClient7()
	}
	return client7
}

// GetESURL returns elasticsearch url with escaped auth
func GetESURL() string {
	esURL := os.Getenv("ES_CLUSTER_URL")

	if esURL == "" {
		log.Fatal("Error encountered: ", fmt.Errorf("ES_CLUSTER_URL must be set in the environment variables"))
	}

	if strings.Contains(esURL, "@") {
		splitIndex := strings.LastIndex(esURL, "@")
		protocolWithCredentials := strings.Split(esURL[0:splitIndex], "://")
		credentials := protocolWithCredentials[1]
		protocol := protocolWithCredentials[0]
		host := esURL[splitIndex+1:]

		credentialSeparator := strings.Index(credentials, ":")
		username := credentials[0:credentialSeparator]
		password := credentials[credentialSeparator+1:]
		esURL = protocol + "://" + url.PathEscape(username) + ":" + url.PathEscape(password) + "@" + host
	}
	return esURL
}

// GetSemanticVersion returns the es version
func GetSemanticVersion() string {
	// Get the version if not present
	if semanticVersion == "" {
		esVersion, err := GetClient7().ElasticsearchVersion(GetESURL())
		if err != nil {
			log.Fatal("Error encountered: ", fmt.Errorf("error while retrieving the elastic version: %v", err))
		} else {
			semanticVersion = esVersion
		}
	}
	return semanticVersion
}

// HiddenIndexSettings to set plugin indices as hidden index
func HiddenIndexSettings() string {
	esVersion, _ := v.NewVersion(GetSemanticVersion())
	hiddenIndexVersion, _ := v.NewVersion("7.7.0")
	if esVersion.GreaterThanOrEqual(hiddenIndexVersion) {
		return `"index.hidden": true,`
	}

	return ""
}

func isSniffingEnabled() bool {
	setSniffing := os.Getenv("SET_SNIFFING")
	sniffing := false
	if setSniffing == "true" {
		sniffing = true
	}
	return sniffing
}

func initClient7() {
	var err error
	// Initialize the ES v7 client

	loggerT := log.New()
	wrappedLoggerDebug := &TraceLogger{*loggerT}
	wrappedLoggerError := &ErrorLogger{*loggerT}

	client7, err = es7.NewClient(
		es7.SetURL(GetESURL()),
		es7.SetRetrier(NewRetrier()),
		es7.SetSniff(isSniffingEnabled()),
		es7.SetHttpClient(HTTPClient()),
		es7.SetErrorLog(wrappedLoggerError),
		es7.SetInfoLog(wrappedLoggerDebug),
		es7.SetTraceLog(wrappedLoggerDebug),
	)
	if err != nil {
		log.Fatal("Error encountered: ", fmt.Errorf("error while initializing elastic v7 client: %v", err))
	}
}

// NewClient instantiates the ES v7 client
func NewClient() {
	clientInit.Do(func() {
		initClient7()
		log.Println("client instantiated, elasticsearch url is", GetESURL())
	})
}
