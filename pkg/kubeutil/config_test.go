package kubeutil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kickplate/kickplate/pkg/kubeutil"
)

const kubeconfigTemplate = `apiVersion: v1
kind: Config
clusters:
- name: test
  cluster:
    server: %s
contexts:
- name: test
  context:
    cluster: test
    user: test
current-context: test
users:
- name: test
  user:
    token: dummy
`

func writeKubeconfig(t *testing.T, dir string, server string) string {
	t.Helper()
	path := filepath.Join(dir, "kubeconfig")
	content := []byte(fmt.Sprintf(kubeconfigTemplate, server))
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KUBECONFIG", "")
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	t.Setenv("KUBERNETES_SERVICE_PORT", "")
}

func TestRestConfig(t *testing.T) {
	t.Run("the argument is used", func(t *testing.T) {
		isolate(t)
		path := writeKubeconfig(t, t.TempDir(), "https://arg.example.com:6443")

		conf, err := kubeutil.RestConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		if conf.Host != "https://arg.example.com:6443" {
			t.Errorf("host = %s", conf.Host)
		}
	})

	t.Run("the argument wins over KUBECONFIG", func(t *testing.T) {
		isolate(t)
		env := writeKubeconfig(t, t.TempDir(), "https://env.example.com:6443")
		arg := writeKubeconfig(t, t.TempDir(), "https://arg.example.com:6443")
		t.Setenv("KUBECONFIG", env)

		conf, err := kubeutil.RestConfig(arg)
		if err != nil {
			t.Fatal(err)
		}
		if conf.Host != "https://arg.example.com:6443" {
			t.Errorf("host = %s", conf.Host)
		}
	})

	t.Run("KUBECONFIG is used when the argument is missing", func(t *testing.T) {
		isolate(t)
		env := writeKubeconfig(t, t.TempDir(), "https://env.example.com:6443")
		t.Setenv("KUBECONFIG", env)

		conf, err := kubeutil.RestConfig(filepath.Join(t.TempDir(), "no-such-file"))
		if err != nil {
			t.Fatal(err)
		}
		if conf.Host != "https://env.example.com:6443" {
			t.Errorf("host = %s", conf.Host)
		}
	})

	t.Run("outside cluster without kubeconfig, it errors", func(t *testing.T) {
		isolate(t)

		if _, err := kubeutil.RestConfig(""); err == nil {
			t.Error("expected error")
		}
	})
}
