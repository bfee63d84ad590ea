package kubeutil

import (
	"os"
	"path/filepath"

	xe "github.com/kickplate/kickplate/pkg/errors"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// RestConfig detects the configuration to connect kubernetes.
//
// The kubeconfig is searched from (later wins):
//
// - `~/.kube/config`
//
// - environmental variable `KUBECONFIG`
//
// - the argument kubeconfig
//
// Paths which are not regular files are skipped.
// When no files are found, it tries to use in-cluster config.
func RestConfig(kubeconfig string) (*rest.Config, error) {
	found := ""
	candidates := []string{}
	if home := homedir.HomeDir(); home != "" {
		candidates = append(candidates, filepath.Join(home, ".kube", "config"))
	}
	candidates = append(candidates, os.Getenv("KUBECONFIG"), kubeconfig)

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if s, err := os.Stat(c); err == nil && s.Mode().IsRegular() {
			found = c
		}
	}

	if found == "" {
		conf, err := rest.InClusterConfig()
		if err != nil {
			return nil, xe.WrapWithNote("no kubeconfig found and not in cluster", err)
		}
		return conf, nil
	}

	conf, err := clientcmd.BuildConfigFromFlags("", found)
	if err != nil {
		return nil, xe.WrapWithNote("loading kubeconfig "+found, err)
	}
	return conf, nil
}
