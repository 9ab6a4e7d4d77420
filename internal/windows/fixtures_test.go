package windows

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
	"codeberg.org/d-buckner/apppack/internal/manifest"
	"codeberg.org/d-buckner/apppack/pkg/xmlutil"
)

const windows10Manifest = `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10" xmlns:mp="http://schemas.microsoft.com/appx/2014/phone/manifest" xmlns:uap="http://schemas.microsoft.com/appx/manifest/uap/windows10" IgnorableNamespaces="uap mp">
  <Identity Name="io.template.app" Publisher="CN=apppack" Version="1.0.0.0"/>
  <Properties>
    <DisplayName>Template</DisplayName>
    <PublisherDisplayName>Template Team</PublisherDisplayName>
    <Logo>images\StoreLogo.png</Logo>
  </Properties>
  <Applications>
    <Application Id="App" StartPage="www/index.html">
      <uap:VisualElements DisplayName="Template" Description="Template" BackgroundColor="#464646" Square150x150Logo="images\Square150x150Logo.png" Square44x44Logo="images\Square44x44Logo.png">
        <uap:SplashScreen Image="images\splashscreen.png"/>
      </uap:VisualElements>
    </Application>
  </Applications>
  <Capabilities>
    <Capability Name="internetClient"/>
  </Capabilities>
</Package>`

const windows81Manifest = `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/2010/manifest" xmlns:m2="http://schemas.microsoft.com/appx/2013/manifest">
  <Identity Name="io.template.app" Publisher="CN=apppack" Version="1.0.0.0"/>
  <Properties>
    <DisplayName>Template</DisplayName>
    <PublisherDisplayName>Template Team</PublisherDisplayName>
    <Logo>images\StoreLogo.png</Logo>
  </Properties>
  <Applications>
    <Application Id="App" StartPage="www/index.html">
      <m2:VisualElements DisplayName="Template" Description="Template" BackgroundColor="#464646" ForegroundText="light" Square150x150Logo="images\Square150x150Logo.png" Square30x30Logo="images\Square30x30Logo.png">
        <m2:SplashScreen Image="images\splashscreen.png"/>
      </m2:VisualElements>
    </Application>
  </Applications>
  <Capabilities>
    <Capability Name="internetClient"/>
  </Capabilities>
</Package>`

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAdapter() *Adapter {
	return NewAdapter(newTestLogger())
}

func loadManifest(t *testing.T, content string) *manifest.Manifest {
	t.Helper()
	tree, err := xmlutil.Parse([]byte(content))
	require.NoError(t, err)
	format, err := manifest.DetectFormat(tree)
	require.NoError(t, err)
	return &manifest.Manifest{Format: format, XML: tree}
}

func render(t *testing.T, m *manifest.Manifest) string {
	t.Helper()
	s, err := m.XML.String()
	require.NoError(t, err)
	return s
}

func baseConfig() *appconfig.AppConfig {
	return &appconfig.AppConfig{
		Name:      "Hello",
		PackageID: "com.example.hello",
		Version:   "1.2.3",
		Author:    "Example Inc",
	}
}
